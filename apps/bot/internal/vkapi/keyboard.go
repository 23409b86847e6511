package vkapi

import "encoding/json"

// Button colors understood by VK clients.
const (
	ColorPrimary   = "primary"
	ColorSecondary = "secondary"
	ColorPositive  = "positive"
	ColorNegative  = "negative"
)

// Keyboard is a bot reply keyboard.
type Keyboard struct {
	OneTime bool       `json:"one_time"`
	Inline  bool       `json:"inline"`
	Buttons [][]Button `json:"buttons"`
}

// Button is a text button; pressing it sends Label as the message text.
type Button struct {
	Action ButtonAction `json:"action"`
	Color  string       `json:"color,omitempty"`
}

// ButtonAction is the action of a text button.
type ButtonAction struct {
	Type    string `json:"type"`
	Label   string `json:"label"`
	Payload string `json:"payload,omitempty"`
}

// NewKeyboard starts an empty keyboard with one open row.
func NewKeyboard(oneTime bool) *Keyboard {
	return &Keyboard{OneTime: oneTime, Buttons: [][]Button{{}}}
}

// AddButton appends a text button to the current row.
func (k *Keyboard) AddButton(label, color string) *Keyboard {
	last := len(k.Buttons) - 1
	k.Buttons[last] = append(k.Buttons[last], Button{
		Action: ButtonAction{Type: "text", Label: label},
		Color:  color,
	})
	return k
}

// AddLine opens a new row.
func (k *Keyboard) AddLine() *Keyboard {
	k.Buttons = append(k.Buttons, []Button{})
	return k
}

// Labels returns every button label, row by row.
func (k *Keyboard) Labels() []string {
	var labels []string
	for _, row := range k.Buttons {
		for _, b := range row {
			labels = append(labels, b.Action.Label)
		}
	}
	return labels
}

// JSON renders the keyboard, dropping empty rows.
func (k *Keyboard) JSON() (string, error) {
	out := *k
	out.Buttons = nil
	for _, row := range k.Buttons {
		if len(row) > 0 {
			out.Buttons = append(out.Buttons, row)
		}
	}
	if out.Buttons == nil {
		out.Buttons = [][]Button{}
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
