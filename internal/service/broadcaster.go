package service

// Broadcaster delivers events to connected users (avoids an import cycle
// with the WebSocket transport). Recipients are addressed by user ID; the
// room manager owns membership and computes recipient lists itself.
type Broadcaster interface {
	ToUser(userID string, event string, payload interface{})
	ToUsers(userIDs []string, event string, payload interface{})
}
