package osc_test

import (
	"fmt"

	"github.com/halward42/go-oscbind/osc"
)

func ExampleDecodeFromBytes() {
	raw := []byte("/hi\x00,s\x00\x00hello\x00\x00\x00")
	raw = append([]byte{0x00, 0x00, 0x00, byte(len(raw))}, raw...)

	packet, err := osc.DecodeFromBytes(raw, osc.Framed)
	if err != nil {
		panic(err)
	}

	fmt.Println(packet.Message.Address, packet.Message.Args[0].Str)
	// Output: /hi hello
}

type pingExample struct {
	Address string
}

func ExampleMarshal() {
	packet, err := osc.Marshal(pingExample{Address: "/ping"})
	if err != nil {
		panic(err)
	}

	fmt.Println(packet.Message.Address, len(packet.Message.Args))
	// Output: /ping 0
}

func ExampleUnmarshal() {
	packet := osc.MessagePacket(osc.Message{
		Address: "/ping",
	})

	var out pingExample
	if err := osc.Unmarshal(packet, &out); err != nil {
		panic(err)
	}

	fmt.Println(out.Address)
	// Output: /ping
}
