package types

// Byte order values as they appear on the wire.
const (
	ByteOrderBigEndian    = "big_endian"
	ByteOrderLittleEndian = "little_endian"
)

// Database is the root aggregate returned by GET /api/database.
// Exactly one snapshot is live in memory at a time; it is replaced
// wholesale on every successful fetch, never patched in place.
type Database struct {
	Filename string    `json:"filename"`
	Nodes    []Node    `json:"nodes"`
	Messages []Message `json:"messages"`
}

// Node is a network participant (ECU). The name is its identity and is
// immutable once created; edits may only change the comment.
type Node struct {
	Name    string `json:"name"`
	Comment string `json:"comment"`
}

// Message is a CAN frame definition. FrameID is its identity: 0-2047 for a
// standard 11-bit id, larger when IsExtendedFrame. The UI treats Senders[0]
// as the sender; additional senders are representable but not editable.
type Message struct {
	FrameID         uint32   `json:"frame_id"`
	Name            string   `json:"name"`
	Length          int      `json:"length"`
	Senders         []string `json:"senders"`
	IsExtendedFrame bool     `json:"is_extended_frame"`
	Comment         string   `json:"comment"`
	Signals         []Signal `json:"signals"`
}

// Signal is a bit-packed field within a message payload with linear scaling
// (physical = raw * factor + offset). Name is unique within its message.
// Choices maps raw integer values (string keys on the wire) to labels and is
// present only when non-empty.
type Signal struct {
	Name      string            `json:"name"`
	StartBit  int               `json:"start_bit"`
	Length    int               `json:"length"`
	ByteOrder string            `json:"byte_order"`
	IsSigned  bool              `json:"is_signed"`
	Factor    float64           `json:"factor"`
	Offset    float64           `json:"offset"`
	Minimum   float64           `json:"minimum"`
	Maximum   float64           `json:"maximum"`
	Unit      string            `json:"unit"`
	Comment   string            `json:"comment"`
	Receivers []string          `json:"receivers"`
	Choices   map[string]string `json:"choices,omitempty"`
}

// MessageUpdate is the request body for message create/update.
// Sender is a single node name; the server stores it as Senders[0].
type MessageUpdate struct {
	Name            string `json:"name"`
	FrameID         uint32 `json:"frame_id"`
	Length          int    `json:"length"`
	Sender          string `json:"sender"`
	IsExtendedFrame bool   `json:"is_extended_frame"`
	Comment         string `json:"comment"`
}

// SignalUpdate is the request body for signal create/update. A nil Choices
// map means "no choices"; an empty map is never sent.
type SignalUpdate struct {
	Name      string            `json:"name"`
	StartBit  int               `json:"start_bit"`
	Length    int               `json:"length"`
	ByteOrder string            `json:"byte_order"`
	IsSigned  bool              `json:"is_signed"`
	Factor    float64           `json:"factor"`
	Offset    float64           `json:"offset"`
	Minimum   float64           `json:"minimum"`
	Maximum   float64           `json:"maximum"`
	Unit      string            `json:"unit"`
	Comment   string            `json:"comment"`
	Receivers []string          `json:"receivers"`
	Choices   map[string]string `json:"choices,omitempty"`
}

// NodeUpdate is the request body for node create/update.
type NodeUpdate struct {
	Name    string `json:"name"`
	Comment string `json:"comment"`
}

// MessageByFrameID returns the message with the given frame id, or nil.
func (d *Database) MessageByFrameID(frameID uint32) *Message {
	for i := range d.Messages {
		if d.Messages[i].FrameID == frameID {
			return &d.Messages[i]
		}
	}
	return nil
}

// NodeByName returns the node with the given name, or nil.
func (d *Database) NodeByName(name string) *Node {
	for i := range d.Nodes {
		if d.Nodes[i].Name == name {
			return &d.Nodes[i]
		}
	}
	return nil
}

// SignalByName returns the signal with the given name, or nil.
func (m *Message) SignalByName(name string) *Signal {
	for i := range m.Signals {
		if m.Signals[i].Name == name {
			return &m.Signals[i]
		}
	}
	return nil
}

// Sender returns the first sender name, or the empty string.
func (m *Message) Sender() string {
	if len(m.Senders) > 0 {
		return m.Senders[0]
	}
	return ""
}
