// Package stream keeps the live server-sent event connections of users and
// delivers notification events to them.
//
// A Registry holds at most one connection per user. Connecting again
// supersedes and closes the previous connection. Completion, timeout and
// transport errors all end in the same cleanup, which only removes the entry
// if it still belongs to the connection being cleaned up.
//
//	reg := stream.NewRegistry(service, stream.WithPresence(presence))
//	go reg.Run(ctx) // heartbeats
//
//	conn := stream.NewSSEConn(w, r)
//	if err := reg.Connect(ctx, userID, conn, r.Header.Get("Last-Event-ID")); err != nil {
//	    return err // stream.ErrConnectionFailed
//	}
//	<-conn.Done()
//	reg.Disconnect(userID, conn)
//
// Clients receive heartbeat, notification, missed_notification and
// unread_count events. Notification events carry an id of the form
// CATEGORY_ID_UNIXMILLI which can be sent back as Last-Event-ID to replay
// everything created after it.
//
// The registry is per process. RedisPresence lets other instances answer
// "is this user connected anywhere"; lookup failures read as disconnected.
package stream
