package query

// LogField identifies a log field by its protocol-assigned numeric
// id. The ids are opaque to the client; the server is authoritative
// for the id to name/label mapping, which ResolveFieldIDs retrieves.
type LogField int

// Working subset of the field catalog. Only fields referenced by the
// bundled monitors are listed; any id accepted by the server can be
// used directly.
const (
	FieldTimestamp     LogField = 1
	FieldAlertSeverity LogField = 2
	FieldAction        LogField = 3
	FieldNodeID        LogField = 4
	FieldSrc           LogField = 7
	FieldSport         LogField = 8
	FieldDst           LogField = 9
	FieldDport         LogField = 10
	FieldProtocol      LogField = 11
	FieldService       LogField = 12
	FieldEvent         LogField = 14
	FieldInfoMsg       LogField = 15
	FieldState         LogField = 23

	FieldDstIf        LogField = 31
	FieldDstVlan      LogField = 32
	FieldDstZone      LogField = 33
	FieldRouteGateway LogField = 34
	FieldRouteNetwork LogField = 35
	FieldRouteType    LogField = 36
	FieldRouteMetric  LogField = 37

	FieldUsername       LogField = 41
	FieldSenderDomain   LogField = 42
	FieldExpirationTime LogField = 43
	FieldSessionID      LogField = 44

	FieldVPNID               LogField = 51
	FieldSecurityGateway     LogField = 52
	FieldPeerSecurityGateway LogField = 53
	FieldEndpoint            LogField = 54
	FieldPeerEndpoint        LogField = 55
	FieldSAClass             LogField = 56
	FieldNegotiationRole     LogField = 57
	FieldSrcAddrs            LogField = 58
	FieldDstAddrs            LogField = 59
	FieldNumBytesSent        LogField = 60
	FieldNumBytesReceived    LogField = 61

	FieldBlockListEntryID       LogField = 71
	FieldBlockLister            LogField = 72
	FieldBlockListEntrySourceIP LogField = 73
	FieldBlockListEntryDestIP   LogField = 74
	FieldBlockListEntryDuration LogField = 75
)

func fieldInts(ids []LogField) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}
