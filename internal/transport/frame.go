package transport

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/bluenviron/gomavlib/v3/pkg/message"
)

// Frame is one decoded MAVLink frame as seen by the router.
type Frame struct {
	SystemID    uint8
	ComponentID uint8
	Name        string // canonical MAVLink name, e.g. COMMAND_ACK
	Message     message.Message
}

// MessageName derives the canonical MAVLink message name from the Go
// message type, e.g. *common.MessageVfrHud -> VFR_HUD.
func MessageName(msg message.Message) string {
	name := fmt.Sprintf("%T", msg)
	name = strings.TrimPrefix(name, "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimPrefix(name, "Message")
	return camelToUpperSnake(name)
}

func camelToUpperSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			prev := rune(s[i-1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
