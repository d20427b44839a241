// internal/mqtt/topics.go
package mqtt

import "strings"

// Topic leaves under <prefix>/<device>/.
const (
	leafWeather    = "weather"
	leafProperty   = "property"
	leafSet        = "set"
	leafConnect    = "connect"
	leafDisconnect = "disconnect"
)

// Topics builds every topic used for one device.
type Topics struct {
	base string
}

// NewTopics roots all topics at <prefix>/<device>.
// Spaces in the device name become underscores.
func NewTopics(prefix, device string) Topics {
	seg := strings.ReplaceAll(device, " ", "_")
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return Topics{base: seg}
	}
	return Topics{base: prefix + "/" + seg}
}

func (t Topics) Weather() string             { return t.base + "/" + leafWeather }
func (t Topics) Property(name string) string { return t.base + "/" + leafProperty + "/" + name }
func (t Topics) Set(name string) string      { return t.base + "/" + leafSet + "/" + name }
func (t Topics) Connect() string             { return t.base + "/" + leafConnect }
func (t Topics) Disconnect() string          { return t.base + "/" + leafDisconnect }

// Commands returns the subscription filters for client commands.
func (t Topics) Commands() []string {
	return []string{t.Set("+"), t.Connect(), t.Disconnect()}
}

type commandKind uint8

const (
	cmdUnknown commandKind = iota
	cmdSet
	cmdConnect
	cmdDisconnect
)

// parse classifies an incoming command topic. For set commands it also
// returns the property name.
func (t Topics) parse(topic string) (commandKind, string) {
	rest, ok := strings.CutPrefix(topic, t.base+"/")
	if !ok {
		return cmdUnknown, ""
	}

	switch rest {
	case leafConnect:
		return cmdConnect, ""
	case leafDisconnect:
		return cmdDisconnect, ""
	}

	name, ok := strings.CutPrefix(rest, leafSet+"/")
	if !ok || name == "" || strings.Contains(name, "/") {
		return cmdUnknown, ""
	}
	return cmdSet, name
}
