//go:build js && wasm

// adproof WASM: client-side image transform editor.
// Compiled with: GOOS=js GOARCH=wasm go build -o internal/web/static/dist/adproof.wasm ./clients/wasm/
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"syscall/js"

	"github.com/kozaktomas/adproof/internal/canvas"
)

// editor is one mounted image with its controller.
type editor struct {
	versionID string
	doc       canvas.DocumentSpec
	maxBox    canvas.Size
	ctrl      *canvas.Controller
}

var editors = canvas.NewRegistry[*editor]()

func main() {
	fmt.Println("adproof WASM loaded")

	js.Global().Set("adproofNewEditor", js.FuncOf(newEditor))
	js.Global().Set("adproofImageLoaded", js.FuncOf(imageLoaded))
	js.Global().Set("adproofPointerDown", js.FuncOf(pointerDown))
	js.Global().Set("adproofPointerMove", js.FuncOf(pointerMove))
	js.Global().Set("adproofPointerUp", js.FuncOf(pointerUp))
	js.Global().Set("adproofSetZoom", js.FuncOf(setZoom))
	js.Global().Set("adproofTransform", js.FuncOf(transform))
	js.Global().Set("adproofSave", js.FuncOf(save))
	js.Global().Set("adproofDisposeEditor", js.FuncOf(disposeEditor))
	js.Global().Set("adproofReady", js.ValueOf(true))

	// Block forever (WASM must not exit).
	select {}
}

func errorValue(format string, args ...any) js.Value {
	return js.ValueOf("error: " + fmt.Sprintf(format, args...))
}

func lookup(args []js.Value) (*editor, bool) {
	if len(args) < 1 {
		return nil, false
	}
	return editors.Get(args[0].Int())
}

// viewJSON describes the editor at its current zoom.
func (e *editor) viewJSON() js.Value {
	t, _ := e.ctrl.Persistable()
	scale := canvas.BaseFitScale(e.doc, e.maxBox)
	view := map[string]any{
		"container":   e.ctrl.Container(),
		"zoom":        e.ctrl.Zoom(),
		"transform":   e.ctrl.Transform(),
		"persistable": t,
		"image_rect":  e.ctrl.ImageRect(),
		"frame":       e.ctrl.ContainerRect(),
		"guides":      canvas.Guides(e.doc, scale, e.ctrl.Zoom(), canvas.GuideOptions{ShowBleed: true, ShowSafe: true}),
		"state":       e.ctrl.State().String(),
		"has_changes": e.ctrl.HasChanges(),
	}
	if err := e.ctrl.Err(); err != nil {
		view["error"] = err.Error()
	}
	data, err := json.Marshal(view)
	if err != nil {
		return errorValue("encode view: %v", err)
	}
	return js.ValueOf(string(data))
}

// adproofNewEditor(versionID, docJSON, maxWidth, maxHeight, zoom, savedJSON) returns an editor id.
func newEditor(this js.Value, args []js.Value) any {
	if len(args) < 6 {
		return errorValue("need versionID, docJSON, maxWidth, maxHeight, zoom, savedJSON")
	}
	var doc canvas.DocumentSpec
	if err := json.Unmarshal([]byte(args[1].String()), &doc); err != nil {
		return errorValue("parse document: %v", err)
	}
	if err := doc.Validate(); err != nil {
		return errorValue("%v", err)
	}

	var saved *canvas.Transform
	if raw := args[5]; raw.Type() == js.TypeString && raw.String() != "" && raw.String() != "null" {
		var t canvas.Transform
		if err := json.Unmarshal([]byte(raw.String()), &t); err != nil {
			return errorValue("parse saved transform: %v", err)
		}
		saved = &t
	}

	maxBox := canvas.Size{Width: args[2].Float(), Height: args[3].Float()}
	zoom := canvas.ClampZoom(args[4].Float())
	e := &editor{
		versionID: args[0].String(),
		doc:       doc,
		maxBox:    maxBox,
		ctrl:      canvas.NewController(canvas.ContainerSize(doc, maxBox, zoom), zoom),
	}
	e.ctrl.Reset(saved)

	return js.ValueOf(editors.Add(e))
}

// adproofImageLoaded(id, naturalWidth, naturalHeight) returns the view JSON.
func imageLoaded(this js.Value, args []js.Value) any {
	e, ok := lookup(args)
	if !ok || len(args) < 3 {
		return errorValue("unknown editor")
	}
	if err := e.ctrl.ImageLoaded(canvas.Size{Width: args[1].Float(), Height: args[2].Float()}); err != nil {
		return errorValue("%v", err)
	}
	return e.viewJSON()
}

// adproofDisposeEditor(id) forgets an editor. It reports whether one existed.
func disposeEditor(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	return js.ValueOf(editors.Remove(args[0].Int()))
}

// adproofPointerDown(id, x, y, handle) reports whether a gesture started.
func pointerDown(this js.Value, args []js.Value) any {
	e, ok := lookup(args)
	if !ok || len(args) < 4 {
		return js.ValueOf(false)
	}
	h, err := canvas.ParseHandle(args[3].String())
	if err != nil {
		return js.ValueOf(false)
	}
	return js.ValueOf(e.ctrl.PointerDown(canvas.Point{X: args[1].Float(), Y: args[2].Float()}, h))
}

// adproofPointerMove(id, x, y) returns the view JSON, or null when nothing moved.
func pointerMove(this js.Value, args []js.Value) any {
	e, ok := lookup(args)
	if !ok || len(args) < 3 {
		return js.Null()
	}
	if !e.ctrl.PointerMove(canvas.Point{X: args[1].Float(), Y: args[2].Float()}) {
		return js.Null()
	}
	return e.viewJSON()
}

// adproofPointerUp(id) ends the gesture.
func pointerUp(this js.Value, args []js.Value) any {
	if e, ok := lookup(args); ok {
		e.ctrl.PointerUp()
	}
	return js.Undefined()
}

// adproofSetZoom(id, zoom) returns the view JSON at the clamped zoom.
func setZoom(this js.Value, args []js.Value) any {
	e, ok := lookup(args)
	if !ok || len(args) < 2 {
		return errorValue("unknown editor")
	}
	zoom := canvas.ClampZoom(args[1].Float())
	if err := e.ctrl.SetView(canvas.ContainerSize(e.doc, e.maxBox, zoom), zoom); err != nil {
		return errorValue("%v", err)
	}
	return e.viewJSON()
}

// adproofTransform(id) returns the view JSON.
func transform(this js.Value, args []js.Value) any {
	e, ok := lookup(args)
	if !ok {
		return errorValue("unknown editor")
	}
	return e.viewJSON()
}

// adproofSave(id, apiKey) returns a Promise resolving to the view JSON.
// A completion from an earlier epoch leaves the editor untouched.
func save(this js.Value, args []js.Value) any {
	e, ok := lookup(args)
	if !ok {
		return errorValue("unknown editor")
	}
	apiKey := ""
	if len(args) > 1 && args[1].Type() == js.TypeString {
		apiKey = args[1].String()
	}
	t, ok := e.ctrl.Persistable()
	if !ok {
		return errorValue("image not loaded")
	}
	epoch := e.ctrl.Epoch()

	handler := js.FuncOf(func(this js.Value, p []js.Value) any {
		resolve, reject := p[0], p[1]
		// HTTP calls block, so they must not run on the JS event loop goroutine.
		go func() {
			err := putTransform(e.versionID, apiKey, t)
			if err != nil {
				if e.ctrl.SaveFailed(epoch, err) {
					reject.Invoke(js.ValueOf(err.Error()))
					return
				}
			} else {
				e.ctrl.MarkSaved(epoch, t)
			}
			resolve.Invoke(e.viewJSON())
		}()
		return nil
	})
	defer handler.Release()
	return js.Global().Get("Promise").New(handler)
}

func putTransform(versionID, apiKey string, t canvas.Transform) error {
	body, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode transform: %w", err)
	}
	req, err := http.NewRequest(http.MethodPut, "/api/v1/versions/"+versionID+"/transform", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("save transform: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("save transform: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
