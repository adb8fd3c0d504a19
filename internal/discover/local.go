package discover

import "net"

// LocalAddress determines the local address the OS would route outbound
// traffic through. Connecting a UDP socket picks a source address without
// transmitting anything; the result is read back from the socket. Returns
// an empty string when no route exists.
func (d *Discoverer) LocalAddress() string {
	conn, err := net.Dial("udp", d.refAddr)
	if err != nil {
		return ""
	}
	defer conn.Close()

	local, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || local.IP == nil {
		return ""
	}
	return local.IP.String()
}
