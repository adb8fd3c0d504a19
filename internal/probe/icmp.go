package probe

import (
	"context"
	"encoding/binary"
	"net"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

const (
	protoICMP   = 1  // ICMP protocol number
	protoICMPv6 = 58 // ICMPv6 protocol number
)

// packetConn is the slice of *icmp.PacketConn the prober needs.
// Tests substitute a scripted implementation.
type packetConn interface {
	WriteTo(b []byte, dst net.Addr) (int, error)
	ReadFrom(b []byte) (int, net.Addr, error)
	SetDeadline(t time.Time) error
	Close() error
}

// listenFunc opens an ICMP listener on the given network.
type listenFunc func(network, address string) (packetConn, error)

func listenICMP(network, address string) (packetConn, error) {
	return icmp.ListenPacket(network, address)
}

// ICMPProber implements Prober using ICMP Echo requests. Each probe owns
// a short-lived socket that is closed on every exit path, so probes never
// share connection state.
type ICMPProber struct {
	identifier uint16
	sequence   uint32
	timeout    time.Duration
	listen     listenFunc
	available  bool
}

// ICMPProberConfig holds configuration for the ICMP prober.
type ICMPProberConfig struct {
	Timeout    time.Duration
	Identifier uint16 // If 0, uses process ID
}

// NewICMPProber creates a new ICMP prober and detects echo capability
// once. The constructor never fails; an incapable environment is reported
// through Available and, uniformly, through every later Probe call.
func NewICMPProber(config ICMPProberConfig) *ICMPProber {
	if config.Timeout == 0 {
		config.Timeout = 1 * time.Second
	}

	identifier := config.Identifier
	if identifier == 0 {
		identifier = uint16(os.Getpid() & 0xffff)
	}

	p := &ICMPProber{
		identifier: identifier,
		timeout:    config.Timeout,
		listen:     listenICMP,
	}
	p.available = p.detect()

	return p
}

// detect checks whether the environment can open ICMP sockets at all.
// A privilege failure still counts as capable: the facility exists, this
// process just may not use it, which each probe reports as NO_PERMISSION.
func (p *ICMPProber) detect() bool {
	conn, _, _, err := p.open(false)
	if err == nil {
		conn.Close()
		return true
	}
	return Classify(err) == KindPermissionDenied
}

// Available reports whether the environment can send echo packets.
func (p *ICMPProber) Available() bool {
	return p.available
}

// Timeout returns the per-probe reply deadline.
func (p *ICMPProber) Timeout() time.Duration {
	return p.timeout
}

// open dials an ICMP listener for the address family, preferring a raw
// socket and falling back to unprivileged datagram ICMP.
func (p *ICMPProber) open(v6 bool) (conn packetConn, proto int, privileged bool, err error) {
	raw, fallback := "ip4:icmp", "udp4"
	bind := "0.0.0.0"
	proto = protoICMP
	if v6 {
		raw, fallback = "ip6:ipv6-icmp", "udp6"
		bind = "::"
		proto = protoICMPv6
	}

	conn, rawErr := p.listen(raw, bind)
	if rawErr == nil {
		return conn, proto, true, nil
	}

	conn, err = p.listen(fallback, bind)
	if err != nil {
		return nil, 0, false, preferPermission(rawErr, err)
	}
	return conn, proto, false, nil
}

// preferPermission picks the error to surface when both socket modes
// fail. A privilege failure is the more specific signal.
func preferPermission(rawErr, fallbackErr error) error {
	if Classify(rawErr) == KindPermissionDenied {
		return rawErr
	}
	return fallbackErr
}

// Probe sends a single ICMP Echo Request to the given IP literal and
// waits up to the configured timeout for a correlated reply.
func (p *ICMPProber) Probe(ctx context.Context, address string) Status {
	if !p.available {
		return StatusNoCapability
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return StatusError
	}
	v6 := strings.Contains(address, ":")

	conn, proto, privileged, err := p.open(v6)
	if err != nil {
		return statusFromError(err)
	}
	defer conn.Close()

	seq := uint16(atomic.AddUint32(&p.sequence, 1))
	var icmpType icmp.Type = ipv4.ICMPTypeEcho
	if v6 {
		icmpType = ipv6.ICMPTypeEchoRequest
	}

	msg := &icmp.Message{
		Type: icmpType,
		Code: 0,
		Body: &icmp.Echo{
			ID:   int(p.identifier),
			Seq:  int(seq),
			Data: echoPayload(),
		},
	}

	wire, err := msg.Marshal(nil)
	if err != nil {
		return StatusError
	}

	deadline := time.Now().Add(p.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetDeadline(deadline)

	// Datagram ICMP sockets expect a UDP address as destination.
	var dst net.Addr = &net.IPAddr{IP: ip}
	if !privileged {
		dst = &net.UDPAddr{IP: ip}
	}

	if _, err := conn.WriteTo(wire, dst); err != nil {
		return statusFromError(err)
	}

	return p.awaitReply(ctx, conn, proto, seq, privileged)
}

// statusFromError maps a classified socket error onto a probe status.
// A timeout is a completed-but-unanswered attempt, not an error.
func statusFromError(err error) Status {
	switch Classify(err) {
	case KindPermissionDenied:
		return StatusNoPermission
	case KindTimeout:
		return StatusFailed
	default:
		return StatusError
	}
}

// awaitReply reads ICMP messages until a packet correlated to our probe
// arrives or the socket deadline fires. Foreign traffic is skipped, never
// misread as an answer.
func (p *ICMPProber) awaitReply(ctx context.Context, conn packetConn, proto int, seq uint16, privileged bool) Status {
	buf := make([]byte, 1500)

	for {
		if ctx.Err() != nil {
			return StatusError
		}

		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			return statusFromError(err)
		}

		msg, err := icmp.ParseMessage(proto, buf[:n])
		if err != nil {
			continue
		}

		switch msg.Type {
		case ipv4.ICMPTypeEchoReply, ipv6.ICMPTypeEchoReply:
			echo, ok := msg.Body.(*icmp.Echo)
			if !ok || uint16(echo.Seq) != seq {
				continue
			}
			// Datagram ICMP sockets rewrite the identifier on send, so
			// it can only be checked on raw sockets.
			if privileged && uint16(echo.ID) != p.identifier {
				continue
			}
			return StatusOK

		case ipv4.ICMPTypeDestinationUnreachable, ipv4.ICMPTypeTimeExceeded:
			if p.matchesEmbedded4(msg, seq, privileged) {
				return StatusFailed
			}

		case ipv6.ICMPTypeDestinationUnreachable, ipv6.ICMPTypeTimeExceeded:
			if p.matchesEmbedded6(msg, seq, privileged) {
				return StatusFailed
			}
		}
		// Not our packet, continue waiting.
	}
}

// embeddedData extracts the quoted original packet from an ICMP error
// message body.
func embeddedData(msg *icmp.Message) []byte {
	switch body := msg.Body.(type) {
	case *icmp.DstUnreach:
		return body.Data
	case *icmp.TimeExceeded:
		return body.Data
	default:
		return nil
	}
}

// matchesEmbedded4 checks whether an ICMPv4 error message quotes our
// echo request.
func (p *ICMPProber) matchesEmbedded4(msg *icmp.Message, seq uint16, privileged bool) bool {
	data := embeddedData(msg)
	if len(data) < 28 { // 20 (IP header) + 8 (ICMP header)
		return false
	}

	// IPv4 header length is in the lower 4 bits of the first byte.
	headerLen := int(data[0]&0x0f) * 4
	if len(data) < headerLen+8 {
		return false
	}

	quoted := data[headerLen:]
	if quoted[0] != 8 { // ICMP Echo Request type
		return false
	}

	origID := binary.BigEndian.Uint16(quoted[4:6])
	origSeq := binary.BigEndian.Uint16(quoted[6:8])
	if privileged && origID != p.identifier {
		return false
	}
	return origSeq == seq
}

// matchesEmbedded6 checks whether an ICMPv6 error message quotes our
// echo request. The quoted packet starts with the fixed 40-byte IPv6
// header.
func (p *ICMPProber) matchesEmbedded6(msg *icmp.Message, seq uint16, privileged bool) bool {
	data := embeddedData(msg)
	if len(data) < 48 { // 40 (IPv6 header) + 8 (ICMPv6 header)
		return false
	}
	if data[6] != protoICMPv6 { // next header must be ICMPv6
		return false
	}

	quoted := data[40:]
	if quoted[0] != 128 { // ICMPv6 Echo Request type
		return false
	}

	origID := binary.BigEndian.Uint16(quoted[4:6])
	origSeq := binary.BigEndian.Uint16(quoted[6:8])
	if privileged && origID != p.identifier {
		return false
	}
	return origSeq == seq
}

// echoPayload builds the echo request payload: the send timestamp in
// big-endian nanoseconds.
func echoPayload() []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(time.Now().UnixNano()))
	return b
}
