package session

import (
	"errors"
	"fmt"
)

var ErrToolDisabled = errors.New("tool is disabled")

// Tool is the active toolbar action.
type Tool int

const (
	ToolMouse Tool = iota
	ToolArea
	ToolAreaImage
	ToolStreet
	ToolImage
	ToolLongLat
	ToolClear
	ToolGenerate
)

var toolNames = [...]string{"mouse", "area", "area-image", "street", "image", "long-lat", "clear", "generate"}

// Tools lists every tool in toolbar order.
var Tools = []Tool{ToolMouse, ToolArea, ToolAreaImage, ToolStreet, ToolImage, ToolLongLat, ToolClear, ToolGenerate}

func (t Tool) String() string {
	if t < 0 || int(t) >= len(toolNames) {
		return "unknown"
	}
	return toolNames[t]
}

func ParseTool(s string) (Tool, error) {
	for i, n := range toolNames {
		if n == s {
			return Tool(i), nil
		}
	}
	return ToolMouse, fmt.Errorf("unknown tool %q", s)
}

func (t Tool) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Tool) UnmarshalText(b []byte) error {
	v, err := ParseTool(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// oneShot tools act immediately and never stay selected.
func (t Tool) oneShot() bool {
	return t == ToolClear || t == ToolGenerate
}

// toolDisabled applies the toolbar rules. The caller holds the lock.
func (s *Session) toolDisabled(t Tool) bool {
	areaClosed := s.doc.Area != nil
	hasImage := s.reference != nil
	switch t {
	case ToolArea, ToolAreaImage, ToolImage, ToolLongLat:
		return areaClosed || hasImage
	case ToolStreet:
		return s.doc.Street != nil || hasImage
	case ToolGenerate:
		return s.busy
	}
	return false
}

func (s *Session) disabledTools() []Tool {
	var out []Tool
	for _, t := range Tools {
		if s.toolDisabled(t) {
			out = append(out, t)
		}
	}
	return out
}
