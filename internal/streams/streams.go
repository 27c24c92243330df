package streams

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/reekpie/rkpi2/internal/api"
	"github.com/reekpie/rkpi2/internal/app"
	"github.com/rs/zerolog"
)

func Init() {
	var cfg struct {
		Streams map[string]string `yaml:"streams"`
	}

	app.LoadConfig(&cfg)

	log = app.GetLogger("streams")

	for name, location := range cfg.Streams {
		streams[name] = location
	}

	api.HandleFunc("api/streams", apiStreams)
}

// Location resolves a configured stream name, anything else passes through.
func Location(src string) string {
	if location, ok := streams[src]; ok {
		return location
	}
	return src
}

// Open returns the raw byte stream behind a source: a configured stream
// name, a local file path or an http(s) URL.
func Open(src string) (io.ReadCloser, error) {
	location := Location(src)

	log.Debug().Msgf("[streams] open %s", location)

	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		req, err := http.NewRequest("GET", location, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", app.UserAgent)

		res, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		if res.StatusCode != http.StatusOK {
			_ = res.Body.Close()
			return nil, fmt.Errorf("streams: wrong response: %s", res.Status)
		}
		return res.Body, nil
	}

	return os.Open(location)
}

// Create opens the destination file behind a source name or path.
func Create(dst string) (io.WriteCloser, error) {
	location := Location(dst)

	log.Debug().Msgf("[streams] create %s", location)

	if strings.Contains(location, "://") {
		return nil, errors.New("streams: unsupported destination: " + location)
	}

	return os.Create(location)
}

func apiStreams(w http.ResponseWriter, r *http.Request) {
	api.ResponseJSON(w, streams)
}

var log zerolog.Logger
var streams = map[string]string{}
