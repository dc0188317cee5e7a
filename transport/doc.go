// Package transport provides the byte streams a bus controller runs on.
//
// A Port is a duplex byte pipe with a bounded read: Read returns (0, nil) once the read
// timeout elapses without data, which lets the reader loop observe a stop request between
// frames. Three implementations are available:
//
//   - OpenSerial opens a serial interface (8 data bits, no parity, 2 stop bits).
//   - DialWebSocket connects to a bridge that carries the bus bytes in binary WebSocket messages.
//   - FromConn adapts any net.Conn, such as a TCP serial server or one end of net.Pipe.
package transport
