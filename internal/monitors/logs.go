package monitors

import "openwatch/internal/query"

// logDefaults is the field set the console log viewer shows by
// default.
var logDefaults = []query.LogField{
	query.FieldTimestamp,
	query.FieldAlertSeverity,
	query.FieldAction,
	query.FieldNodeID,
	query.FieldSrc,
	query.FieldSport,
	query.FieldDst,
	query.FieldDport,
	query.FieldProtocol,
	query.FieldEvent,
	query.FieldInfoMsg,
}

// LogQuery fetches stored or live log records from the log viewer
// socket. Results arrive newest first by default.
type LogQuery struct {
	*query.Query
}

// NewLogQuery returns a log viewer query with the console's default
// field set.
func NewLogQuery() *LogQuery {
	q := query.New(query.LogViewerLocation, logDefaults)
	q.SetBackwards(true)
	return &LogQuery{Query: q}
}
