// Command transcribeclient exercises the service end to end: it uploads an
// audio file and requests a transcription, printing the resulting outcome.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "service base URL")
	file := flag.String("file", "", "path to an audio file")
	flag.Parse()

	if *file == "" {
		log.Fatal("usage: transcribeclient -file recording.wav [-addr http://host:port]")
	}

	client := &http.Client{Timeout: 15 * time.Minute}

	audioURL, err := upload(client, *addr, *file)
	if err != nil {
		log.Fatalf("upload failed: %v", err)
	}
	log.Printf("uploaded: %s", audioURL)

	outcome, err := transcribe(client, *addr, audioURL)
	if err != nil {
		log.Fatalf("transcription request failed: %v", err)
	}

	fmt.Println(outcome)
}

func upload(client *http.Client, addr, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreatePart(audioPartHeader(filepath.Base(path)))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, addr+"/v1/audio", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("http %d: %s", resp.StatusCode, b)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// audioPartHeader builds the multipart header for the audio part. The server
// only accepts parts with an audio content type, which CreateFormFile's
// application/octet-stream default would fail.
func audioPartHeader(filename string) textproto.MIMEHeader {
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename="%s"`, filename))
	h.Set("Content-Type", audioContentType(filename))
	return h
}

func audioContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp3":
		return "audio/mpeg"
	case ".m4a":
		return "audio/mp4"
	case ".ogg":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	case ".webm":
		return "audio/webm"
	default:
		return "audio/wav"
	}
}

func transcribe(client *http.Client, addr, audioURL string) (string, error) {
	body, _ := json.Marshal(map[string]string{"audioUrl": audioURL})

	resp, err := client.Post(addr+"/v1/transcriptions", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("http %d: %s", resp.StatusCode, b)
	}

	var pretty bytes.Buffer
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return string(raw), nil
	}
	return pretty.String(), nil
}
