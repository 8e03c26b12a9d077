// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package pipeline wires a single captured TCP flow's bytes through
// reassembly, application framing, and sub-packet decoding, then hands
// decoded events off to a consumer through an unbounded, non-blocking
// queue.
package pipeline

import "fmt"

// Server identifies one captured TCP flow by its four-tuple.
type Server struct {
	SrcAddr [4]byte
	SrcPort uint16
	DstAddr [4]byte
	DstPort uint16
}

// NewServer builds a Server identity from its four-tuple.
func NewServer(srcAddr [4]byte, srcPort uint16, dstAddr [4]byte, dstPort uint16) Server {
	return Server{SrcAddr: srcAddr, SrcPort: srcPort, DstAddr: dstAddr, DstPort: dstPort}
}

// String renders the flow as "src:port -> dst:port", matching the
// capture tool's log line format.
func (s Server) String() string {
	return fmt.Sprintf("%s:%d -> %s:%d", ipToString(s.SrcAddr), s.SrcPort, ipToString(s.DstAddr), s.DstPort)
}

func ipToString(ip [4]byte) string {
	return fmt.Sprintf("%d.%d.%d.%d", ip[0], ip[1], ip[2], ip[3])
}
