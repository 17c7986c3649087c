package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/booklet/internal/models"
	"github.com/lehigh-university-libraries/booklet/internal/pdfexport"
)

func newTestServer(t *testing.T, cfg Config) (*Handler, *httptest.Server) {
	t.Helper()
	h, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return h, srv
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode %s %s: %v", method, url, err)
		}
	}
	return resp
}

func createScene(t *testing.T, srv *httptest.Server, query string) *models.Scene {
	t.Helper()
	var scene models.Scene
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/scenes?"+query, nil, &scene)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}
	return &scene
}

func countElements(s *models.Scene) int {
	n := 0
	for _, c := range s.Cells {
		n += len(c.Elements)
	}
	return n
}

func TestEditorPage(t *testing.T) {
	h, srv := newTestServer(t, Config{})

	resp, err := http.Get(srv.URL + "/?template=4-page&text1=Hello&text4=Bye")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	page := string(body)
	if got := strings.Count(page, `class="page-cell`); got != 4 {
		t.Errorf("Expected 4 page cells, got %d", got)
	}
	for _, want := range []string{"Hello", "Bye", "rotate(180deg)", "Page 2", "active-page"} {
		if !strings.Contains(page, want) {
			t.Errorf("Expected editor page to contain %q", want)
		}
	}
	if h.Scenes().Len() != 1 {
		t.Errorf("Expected one stored scene, got %d", h.Scenes().Len())
	}
}

func TestSceneLifecycle(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	scene := createScene(t, srv, "book=cat-on-a-mat")

	if len(scene.Cells) != 8 || scene.Template != "8-page" {
		t.Fatalf("Expected 8-page scene, got %s with %d cells", scene.Template, len(scene.Cells))
	}

	var fetched models.Scene
	doJSON(t, http.MethodGet, srv.URL+"/api/scenes/"+scene.ID, nil, &fetched)
	if fetched.ID != scene.ID {
		t.Errorf("Expected scene %s, got %s", scene.ID, fetched.ID)
	}

	var list []SceneSummary
	doJSON(t, http.MethodGet, srv.URL+"/api/scenes", nil, &list)
	if len(list) != 1 || list[0].Book != "cat-on-a-mat" {
		t.Errorf("Expected one listed scene for cat-on-a-mat, got %+v", list)
	}

	var rerendered ChangeResponse
	doJSON(t, http.MethodPost, srv.URL+"/api/scenes/"+scene.ID+"/render?template=4-page", nil, &rerendered)
	if rerendered.Scene.ID != scene.ID || len(rerendered.Scene.Cells) != 4 {
		t.Errorf("Expected rerender to keep the id with 4 cells, got %s with %d", rerendered.Scene.ID, len(rerendered.Scene.Cells))
	}

	if resp := doJSON(t, http.MethodDelete, srv.URL+"/api/scenes/"+scene.ID, nil, nil); resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", resp.StatusCode)
	}
	if resp := doJSON(t, http.MethodGet, srv.URL+"/api/scenes/"+scene.ID, nil, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestActivate(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	scene := createScene(t, srv, "")

	tests := []struct {
		index   int
		changed bool
		active  int
	}{
		{3, true, 3},
		{99, false, 3},
		{-1, false, 3},
		{0, true, 0},
	}
	for _, tt := range tests {
		var res ChangeResponse
		doJSON(t, http.MethodPost, srv.URL+"/api/scenes/"+scene.ID+"/activate", map[string]int{"index": tt.index}, &res)
		if res.Changed != tt.changed {
			t.Errorf("Activate(%d): expected changed=%v, got %v", tt.index, tt.changed, res.Changed)
		}
		if got := res.Scene.ActiveIndex(); got != tt.active {
			t.Errorf("Activate(%d): expected active %d, got %d", tt.index, tt.active, got)
		}
	}
}

func TestAddAndEditText(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	scene := createScene(t, srv, "")

	var added ChangeResponse
	doJSON(t, http.MethodPost, srv.URL+"/api/scenes/"+scene.ID+"/text", nil, &added)
	if !added.Changed || added.Element == nil || added.Element.Text != "Edit me..." {
		t.Fatalf("Expected placeholder text element, got %+v", added.Element)
	}

	var edited ChangeResponse
	url := srv.URL + "/api/scenes/" + scene.ID + "/elements/" + added.Element.ID
	doJSON(t, http.MethodPut, url, map[string]string{"text": "Once upon a time"}, &edited)
	if _, el := edited.Scene.Element(added.Element.ID); el == nil || el.Text != "Once upon a time" {
		t.Errorf("Expected edited text, got %+v", el)
	}

	if resp := doJSON(t, http.MethodPut, srv.URL+"/api/scenes/"+scene.ID+"/elements/nope", map[string]string{"text": "x"}, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown element, got %d", resp.StatusCode)
	}

	var removed ChangeResponse
	doJSON(t, http.MethodDelete, url, nil, &removed)
	if countElements(removed.Scene) != 0 {
		t.Errorf("Expected element to be removed")
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 4))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func upload(t *testing.T, url, field string, data []byte) (*http.Response, ChangeResponse) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, "upload.bin")
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(data)
	}
	mw.Close()

	resp, err := http.Post(url, mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out ChangeResponse
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatal(err)
		}
	}
	return resp, out
}

func TestUpload(t *testing.T) {
	_, srv := newTestServer(t, Config{UploadLimit: 1 << 16})
	scene := createScene(t, srv, "")
	url := srv.URL + "/api/scenes/" + scene.ID + "/images"

	tests := []struct {
		name    string
		field   string
		data    []byte
		status  int
		changed bool
	}{
		{"png", "file", pngBytes(t), http.StatusOK, true},
		{"text file", "file", []byte("not a picture"), http.StatusOK, false},
		{"empty file", "file", nil, http.StatusOK, false},
		{"no file", "", nil, http.StatusOK, false},
		{"too large", "file", make([]byte, 1<<17), http.StatusRequestEntityTooLarge, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var current models.Scene
			doJSON(t, http.MethodGet, srv.URL+"/api/scenes/"+scene.ID, nil, &current)
			before := countElements(&current)

			resp, res := upload(t, url, tt.field, tt.data)
			if resp.StatusCode != tt.status {
				t.Fatalf("Expected %d, got %d", tt.status, resp.StatusCode)
			}
			if tt.status != http.StatusOK {
				return
			}
			if res.Changed != tt.changed {
				t.Errorf("Expected changed=%v, got %v", tt.changed, res.Changed)
			}
			after := countElements(res.Scene)
			if tt.changed && after != before+1 {
				t.Errorf("Expected one more element, got %d -> %d", before, after)
			}
			if !tt.changed && after != before {
				t.Errorf("Expected scene unchanged, got %d -> %d", before, after)
			}
			if tt.changed && (res.Element.Kind != models.KindImage || res.Element.Width != 100) {
				t.Errorf("Expected 100px image element, got %+v", res.Element)
			}
		})
	}
}

func TestGestures(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	scene := createScene(t, srv, "text2=Hello")
	base := srv.URL + "/api/scenes/" + scene.ID

	var el *models.Element
	for _, c := range scene.Cells {
		if len(c.Elements) > 0 {
			el = c.Elements[0]
		}
	}
	if el == nil {
		t.Fatal("Expected a seeded text element")
	}

	var started GestureResponse
	doJSON(t, http.MethodPost, base+"/gestures", GestureRequest{ElementID: el.ID, Target: "editable", X: 10, Y: 10}, &started)
	if started.Started {
		t.Error("Expected press on editable text not to start a gesture")
	}

	if resp := doJSON(t, http.MethodPost, base+"/gestures/move", GestureRequest{X: 20, Y: 20}, nil); resp.StatusCode != http.StatusConflict {
		t.Errorf("Expected 409 without a gesture, got %d", resp.StatusCode)
	}

	doJSON(t, http.MethodPost, base+"/gestures", GestureRequest{ElementID: el.ID, Target: "content", X: 10, Y: 10}, &started)
	if !started.Started || started.Mode != "drag" {
		t.Fatalf("Expected drag, got %+v", started)
	}

	var moved GestureResponse
	doJSON(t, http.MethodPost, base+"/gestures/move", GestureRequest{X: 25, Y: 4}, &moved)
	if moved.Element.Left != el.Left+15 || moved.Element.Top != el.Top-6 {
		t.Errorf("Expected element moved by (15, -6), got (%v, %v) from (%v, %v)", moved.Element.Left, moved.Element.Top, el.Left, el.Top)
	}

	var ended GestureResponse
	doJSON(t, http.MethodPost, base+"/gestures/end", nil, &ended)
	if !ended.Ended {
		t.Error("Expected active gesture to end")
	}

	doJSON(t, http.MethodPost, base+"/gestures", GestureRequest{ElementID: el.ID, Target: "handle", X: 0, Y: 0, Measured: models.Size{Width: 200, Height: 40}}, &started)
	if started.Mode != "resize" {
		t.Fatalf("Expected resize, got %+v", started)
	}
	doJSON(t, http.MethodPost, base+"/gestures/move", GestureRequest{X: -10, Y: 5}, &moved)
	if moved.Element.Width != 190 || moved.Element.Height != 45 {
		t.Errorf("Expected 190x45, got %vx%v", moved.Element.Width, moved.Element.Height)
	}
}

func TestBookPDF(t *testing.T) {
	_, srv := newTestServer(t, Config{})

	tests := []struct {
		path   string
		status int
	}{
		{"/books/cat-on-a-mat.pdf", http.StatusOK},
		{"/books/no-such-book.pdf", http.StatusNotFound},
		{"/books/cat-on-a-mat", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Fatalf("Expected %d, got %d", tt.status, resp.StatusCode)
			}
			if tt.status != http.StatusOK {
				return
			}
			if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
				t.Errorf("Expected application/pdf, got %s", ct)
			}
			if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="cat-on-a-mat.pdf"` {
				t.Errorf("Unexpected Content-Disposition: %s", cd)
			}
			body, _ := io.ReadAll(resp.Body)
			if !bytes.HasPrefix(body, []byte("%PDF-")) {
				t.Error("Expected PDF body")
			}
		})
	}
}

type failingCanvas struct{ pdfexport.Canvas }

func (failingCanvas) Output(io.Writer) error { return errors.New("disk full") }

func TestPDFFailureIsGeneric(t *testing.T) {
	exporter := pdfexport.NewWithCanvas(func() pdfexport.Canvas {
		return failingCanvas{pdfexport.NewPDFCanvas()}
	})
	_, srv := newTestServer(t, Config{Exporter: exporter})
	scene := createScene(t, srv, "")

	for _, path := range []string{"/books/cat-on-a-mat.pdf", "/api/scenes/" + scene.ID + "/pdf"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("%s: expected 500, got %d", path, resp.StatusCode)
		}
		if strings.TrimSpace(string(body)) != "Failed to generate PDF" || strings.Contains(string(body), "disk full") {
			t.Errorf("%s: expected generic message, got %q", path, body)
		}
	}
}

func TestScenePDF(t *testing.T) {
	_, srv := newTestServer(t, Config{})
	scene := createScene(t, srv, "book=big-pig-dig")
	upload(t, srv.URL+"/api/scenes/"+scene.ID+"/images", "file", pngBytes(t))

	resp, err := http.Get(srv.URL + "/api/scenes/" + scene.ID + "/pdf")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "big-pig-dig.pdf") {
		t.Errorf("Expected book filename, got %s", cd)
	}
}

func TestCatalogPages(t *testing.T) {
	_, srv := newTestServer(t, Config{})

	resp, err := http.Get(srv.URL + "/catalog")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	page := string(body)

	for _, want := range []string{"Rhyming Books", "More Books", "Download PDF", `/books/bug-in-a-rug.pdf`, "<details>"} {
		if !strings.Contains(page, want) {
			t.Errorf("Expected catalog page to contain %q", want)
		}
	}
	if got := strings.Count(page, "more-books"); got != 3 {
		t.Errorf("Expected a hidden list for each of the 3 long categories, got %d", got)
	}

	var c struct {
		Categories []struct {
			Key   string `json:"key"`
			Books []struct {
				Key string `json:"key"`
			} `json:"books"`
		} `json:"categories"`
	}
	doJSON(t, http.MethodGet, srv.URL+"/api/catalog", nil, &c)
	if len(c.Categories) != 3 || len(c.Categories[0].Books) != 5 {
		t.Errorf("Unexpected catalog JSON: %+v", c)
	}
}

func TestStaticAndHealth(t *testing.T) {
	_, srv := newTestServer(t, Config{})

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/healthcheck", http.StatusOK, "OK"},
		{"/static/app.js", http.StatusOK, "addEventListener"},
		{"/static/style.css", http.StatusOK, ".page-grid"},
		{"/static/missing.js", http.StatusNotFound, ""},
		{"/nope", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		resp, err := http.Get(srv.URL + tt.path)
		if err != nil {
			t.Fatal(err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != tt.status {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.status, resp.StatusCode)
		}
		if !strings.Contains(string(body), tt.body) {
			t.Errorf("%s: expected body to contain %q", tt.path, tt.body)
		}
	}
}
