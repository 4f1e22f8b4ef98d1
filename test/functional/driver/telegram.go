package driver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

const (
	FakeToken = "42:functional"
	ChatID    = int64(4242)
)

// SentFile is a document the bot uploaded.
type SentFile struct {
	Name    string
	Caption string
	Content []byte
}

// FakeTelegram plays the Bot API for a single chat.
type FakeTelegram struct {
	server *httptest.Server

	pending chan map[string]any
	mu      sync.Mutex
	nextID  int64
	texts   []string
	files   []SentFile
	uploads map[string][]byte
}

func NewFakeTelegram() *FakeTelegram {
	tg := &FakeTelegram{
		pending: make(chan map[string]any, 64),
		nextID:  1,
		uploads: map[string][]byte{},
	}

	router := http.NewServeMux()
	router.HandleFunc("/bot"+FakeToken+"/getUpdates", tg.getUpdates)
	router.HandleFunc("/bot"+FakeToken+"/sendMessage", tg.sendMessage)
	router.HandleFunc("/bot"+FakeToken+"/sendDocument", tg.sendDocument)
	router.HandleFunc("/bot"+FakeToken+"/getFile", tg.getFile)
	router.HandleFunc("/file/bot"+FakeToken+"/", tg.download)
	tg.server = httptest.NewServer(router)
	return tg
}

func (t *FakeTelegram) URL() string {
	return t.server.URL
}

func (t *FakeTelegram) Close() {
	t.server.Close()
}

// SendText queues a text message from the user.
func (t *FakeTelegram) SendText(text string) {
	t.enqueue(map[string]any{"text": text})
}

// SendDocument queues a document from the user.
func (t *FakeTelegram) SendDocument(name, caption string, content []byte) {
	t.mu.Lock()
	fileID := fmt.Sprintf("file-%d", len(t.uploads)+1)
	t.uploads[fileID] = content
	t.mu.Unlock()

	t.enqueue(map[string]any{
		"caption":  caption,
		"document": map[string]any{"file_id": fileID, "file_name": name, "file_size": len(content)},
	})
}

func (t *FakeTelegram) Texts() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.texts...)
}

func (t *FakeTelegram) Files() []SentFile {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]SentFile(nil), t.files...)
}

func (t *FakeTelegram) enqueue(message map[string]any) {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.mu.Unlock()

	message["message_id"] = id
	message["date"] = time.Now().Unix()
	message["chat"] = map[string]any{"id": ChatID, "type": "private"}
	t.pending <- map[string]any{"update_id": id, "message": message}
}

func (t *FakeTelegram) getUpdates(w http.ResponseWriter, r *http.Request) {
	var updates []map[string]any
	select {
	case update := <-t.pending:
		updates = append(updates, update)
	case <-time.After(100 * time.Millisecond):
	case <-r.Context().Done():
		return
	}
	reply(w, updates)
}

func (t *FakeTelegram) sendMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	t.mu.Lock()
	t.texts = append(t.texts, body.Text)
	t.mu.Unlock()

	reply(w, map[string]any{"message_id": 1})
}

func (t *FakeTelegram) sendDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("document")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	content, _ := io.ReadAll(file)

	t.mu.Lock()
	t.files = append(t.files, SentFile{Name: header.Filename, Caption: r.FormValue("caption"), Content: content})
	t.mu.Unlock()

	reply(w, map[string]any{"message_id": 2})
}

func (t *FakeTelegram) getFile(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("file_id")
	reply(w, map[string]any{"file_id": fileID, "file_path": "documents/" + fileID})
}

func (t *FakeTelegram) download(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	t.mu.Lock()
	content, found := t.uploads[fileID]
	t.mu.Unlock()

	if !found {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write(content)
}

func reply(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": result})
}
