// Package controller implements the duplex bus controller.
//
// A Controller owns a transport.Port. Once started, a single reader goroutine splits the
// incoming byte stream into frames, decodes them with the protocol package and pushes one
// Event per frame into a Sink. Any number of goroutines may call SendMessage; sends are
// serialized so that at most one written frame waits for its echo at a time.
//
// Every frame a device puts on the bus is received back by all devices, including the
// sender. SendMessage therefore returns once the written frame has been read back
// (the echo); it does not wait for the acknowledgment. Acknowledgments are correlated
// with the message they answer by the reader and delivered as EventAnswer:
//
//	hub := controller.NewHub(logger.GetLogger())
//	sub := hub.Subscribe(64)
//
//	ctrl, err := controller.New(port, hub, controller.WithSendTimeout(2*time.Second))
//	if err != nil {
//	    return err
//	}
//	defer ctrl.Close()
//
//	if err := ctrl.Start(); err != nil {
//	    return err
//	}
//
//	req := protocol.SwReq{Switch: args.NewSwitch(12, args.Straight, true)}
//	if err := ctrl.SendMessage(ctx, req); err != nil {
//	    return err
//	}
//
//	for ev := range sub.C() {
//	    if ev.Kind == controller.EventAnswer {
//	        fmt.Println(ev.Message, "answers", ev.Request)
//	    }
//	}
//
// Only a failing transport stops the reader: it is reported once as EventFatal.
// Malformed frames are reported as EventError and the reader continues with the next opcode.
package controller
