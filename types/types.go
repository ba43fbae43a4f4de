package types

// Bus payload types shared by the on-device services and the host tooling.

// FrameEvent is published on {"lin","frame"} for every received frame.
// Bytes are raw wire content: sync, ID, data, checksum, unvalidated.
type FrameEvent struct {
	Bytes []byte `json:"bytes"`
	TsMs  int64  `json:"ts_ms"`
}

// ErrorEvent is published on {"lin","error"} when the sticky fault set is
// drained. Codes use the errcode vocabulary.
type ErrorEvent struct {
	Codes []string `json:"codes"`
	TsMs  int64    `json:"ts_ms"`
}

// RxState is the retained {"linrx","state"} document.
type RxState struct {
	Phase  string `json:"phase"` // "idle" | "running" | "error"
	Detail string `json:"detail,omitempty"`
}
