// Package push delivers notifications to users' devices through an external
// push gateway.
//
// Gateway is the provider boundary. SNSGateway publishes to AWS SNS mobile
// platform endpoints; LogGateway only logs and is meant for development.
// Adapter resolves the owner's push address through the user directory and
// turns a notification into a Message. A blank address is not an error.
//
//	gw, err := push.NewSNSGateway(ctx, cfg)
//	adapter := push.NewAdapter(users, gw, push.WithSendTimeout(cfg.SendTimeout))
//	err = adapter.Send(ctx, n) // errors.Is(err, push.ErrProvider) on gateway failure
package push
