package net

import (
	"errors"
	"fmt"
	"net"
)

// GetOutgoingIP finds the preferred local IP address to share with other
// participants on the LAN.
func GetOutgoingIP() (net.IP, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// Networks without internet access still have a LAN address.
		return getLocalIPFallback()
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP, nil
}

func getLocalIPFallback() (net.IP, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, err
	}
	for _, address := range addrs {
		if ipnet, ok := address.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ip4 := ipnet.IP.To4(); ip4 != nil {
				return ip4, nil
			}
		}
	}
	return net.IPv4(127, 0, 0, 1), errors.New("no non-loopback IPv4 address")
}

// ShareLink is the websocket URL other participants join with.
func ShareLink(ip net.IP, port int) string {
	return fmt.Sprintf("ws://%s/ws", net.JoinHostPort(ip.String(), fmt.Sprint(port)))
}
