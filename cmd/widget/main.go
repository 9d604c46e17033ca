//go:build js && wasm

// Command widget is the booking form's browser binding, compiled to widget.wasm.
// It wires the submit button to widget.Controller and the date picker to the
// availability constraint served by /api/availability.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"syscall/js"
	"time"

	"bookingrelay/internal/domain/availability"
	"bookingrelay/internal/domain/blackout"
	"bookingrelay/internal/domain/booking"
	"bookingrelay/internal/widget"
)

// easepickFormat is the day format easepick's DateTime.format understands.
const easepickFormat = "YYYY-MM-DD"

var pickerCSS = []any{
	"https://cdn.jsdelivr.net/npm/@easepick/core@1.2.1/dist/index.css",
	"https://cdn.jsdelivr.net/npm/@easepick/lock-plugin@1.2.1/dist/index.css",
}

// domRenderer projects controller states onto the submit button.
type domRenderer struct {
	button js.Value
}

func (r domRenderer) Render(label string, disabled bool) {
	r.button.Set("textContent", label)
	r.button.Set("disabled", disabled)
}

func main() {
	doc := js.Global().Get("document")
	form := doc.Call("getElementById", "booking-form")
	button := doc.Call("getElementById", "button")
	if form.IsNull() || button.IsNull() {
		slog.Warn("widget_form_missing")
		return
	}

	ctrl := widget.NewController(
		domRenderer{button: button},
		widget.HTTPSubmitter{Endpoint: form.Get("dataset").Get("endpoint").String()},
	)

	// Funcs stay registered for the life of the page, so they are never released.
	onSubmit := js.FuncOf(func(this js.Value, args []js.Value) any {
		args[0].Call("preventDefault")
		ctrl.Click(context.Background(), readRequest(doc))
		return nil
	})
	form.Call("addEventListener", "submit", onSubmit)

	if cta := doc.Call("getElementById", "book-cta"); !cta.IsNull() {
		cta.Call("addEventListener", "click", js.FuncOf(func(this js.Value, args []js.Value) any {
			scrollToBook(doc)
			return nil
		}))
	}

	// Network calls must not run on the event loop's callback goroutine.
	go initPicker(doc, form.Get("dataset").Get("availability").String())

	select {}
}

func readRequest(doc js.Value) booking.Request {
	value := func(id string) string {
		el := doc.Call("getElementById", id)
		if el.IsNull() {
			return ""
		}
		return el.Get("value").String()
	}
	return booking.Request{
		Name:    value("name"),
		Number:  value("number"),
		Email:   value("email"),
		Dates:   value("datepicker"),
		Message: value("message"),
	}
}

func scrollToBook(doc js.Value) {
	if book := doc.Call("getElementById", "book"); !book.IsNull() {
		book.Call("scrollIntoView", map[string]any{"behavior": "smooth"})
	}
}

// initPicker fetches the picker configuration and mounts easepick on #datepicker.
// When either is unavailable the input stays a plain text field.
func initPicker(doc js.Value, endpoint string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := fetchPickerConfig(ctx, endpoint)
	if err != nil {
		slog.Warn("widget_availability_failed", "error", err)
		return
	}
	constraint, err := availability.FromPickerConfig(cfg)
	if err != nil {
		slog.Warn("widget_availability_invalid", "error", err)
		return
	}

	easepick := js.Global().Get("easepick")
	input := doc.Call("getElementById", "datepicker")
	if easepick.IsUndefined() || input.IsNull() {
		slog.Warn("widget_picker_unavailable")
		return
	}

	filter := js.FuncOf(func(this js.Value, args []js.Value) any {
		day, err := blackout.ParseDay(args[0].Call("format", easepickFormat).String())
		if err != nil {
			return false
		}
		return constraint.IsLocked(day)
	})

	easepick.Get("create").New(map[string]any{
		"element":  input,
		"css":      pickerCSS,
		"firstDay": 0,
		"plugins":  []any{"LockPlugin", "RangePlugin"},
		"LockPlugin": map[string]any{
			"minDate": cfg.MinDate,
			"maxDate": cfg.MaxDate,
			"minDays": cfg.MinDays,
			"filter":  filter,
		},
	})
}

func fetchPickerConfig(ctx context.Context, endpoint string) (availability.PickerConfig, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return availability.PickerConfig{}, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return availability.PickerConfig{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return availability.PickerConfig{}, fmt.Errorf("%w: %d", widget.ErrUnexpectedStatus, resp.StatusCode)
	}
	var cfg availability.PickerConfig
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return availability.PickerConfig{}, fmt.Errorf("decode picker config: %w", err)
	}
	return cfg, nil
}
