package signing

import "strconv"

// BuildMessage returns the canonical string "{username}-{requestID}-{timestamp}".
// timestamp is the server's Unix time for the request, never client supplied.
func BuildMessage(username, requestID string, timestamp int64) string {
	return username + "-" + requestID + "-" + strconv.FormatInt(timestamp, 10)
}
