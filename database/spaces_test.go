package database

import (
	"encoding/xml"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/coldenflo/ICeducation/services/digitalocean"
	"github.com/stretchr/testify/require"
)

// fakeSpaces is a path-style S3 stand-in covering the calls SpacesStore makes
type fakeSpaces struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
}

type listResult struct {
	XMLName     xml.Name `xml:"ListBucketResult"`
	Name        string   `xml:"Name"`
	Prefix      string   `xml:"Prefix"`
	KeyCount    int      `xml:"KeyCount"`
	IsTruncated bool     `xml:"IsTruncated"`
	Contents    []struct {
		Key string `xml:"Key"`
	} `xml:"Contents"`
}

func (f *fakeSpaces) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/"+f.bucket)
	key := strings.TrimPrefix(path, "/")

	if key == "" {
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			prefix := r.URL.Query().Get("prefix")
			res := listResult{Name: f.bucket, Prefix: prefix}
			var keys []string
			for k := range f.objects {
				if strings.HasPrefix(k, prefix) {
					keys = append(keys, k)
				}
			}
			sort.Strings(keys)
			for _, k := range keys {
				res.Contents = append(res.Contents, struct {
					Key string `xml:"Key"`
				}{Key: k})
			}
			res.KeyCount = len(keys)
			w.Header().Set("Content-Type", "application/xml")
			_ = xml.NewEncoder(w).Encode(res)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = body
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		_, _ = w.Write(body)
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestSpacesStore(t *testing.T) {
	fake := &fakeSpaces{bucket: "catalogue-test", objects: map[string][]byte{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	client, err := digitalocean.NewSpacesClient(digitalocean.SpacesConfig{
		AccessKey: "test",
		SecretKey: "test",
		Bucket:    "catalogue-test",
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		PathStyle: true,
	})
	require.NoError(t, err)

	exerciseKeyValue(t, NewSpacesStore(client, "catalogue/"))

	// everything lives under the prefix
	fake.mu.Lock()
	defer fake.mu.Unlock()
	for k := range fake.objects {
		require.True(t, strings.HasPrefix(k, "catalogue/"), k)
	}
}
