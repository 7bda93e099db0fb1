/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
)

// LyricLine is one timed lyric entry, sorted ascending by time.
type LyricLine struct {
	Time float64 `json:"time"`
	Text string  `json:"text"`
}

var lrcTimeTag = regexp.MustCompile(`\[(\d{1,2}):(\d{2})(?:\.(\d{1,3}))?\]`)

// parseLRC extracts timed lyric lines from LRC text. A line may carry
// several time tags, in which case the lyric repeats at each time. Lines
// without a time tag or without lyric text are skipped. The fractional
// part may be 1-3 digits and is read as milliseconds (".5" means 500ms).
func parseLRC(text string) []LyricLine {
	var entries []LyricLine

	for _, raw := range strings.Split(text, "\n") {
		raw = strings.TrimSuffix(raw, "\r")

		matches := lrcTimeTag.FindAllStringSubmatchIndex(raw, -1)
		if len(matches) == 0 {
			continue
		}

		lyric := strings.TrimSpace(raw[matches[len(matches)-1][1]:])
		if lyric == "" {
			continue
		}

		for _, m := range matches {
			min, _ := strconv.Atoi(raw[m[2]:m[3]])
			sec, _ := strconv.Atoi(raw[m[4]:m[5]])

			ms := 0
			if m[6] >= 0 {
				frac := raw[m[6]:m[7]]
				for len(frac) < 3 {
					frac += "0"
				}
				ms, _ = strconv.Atoi(frac)
			}

			entries = append(entries, LyricLine{
				Time: float64(min*60+sec) + float64(ms)/1000,
				Text: lyric,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time < entries[j].Time
	})

	return entries
}

// serveLyrics returns the parsed lyric timing for one song as JSON. The
// song id arrives as :category/:name path segments, mirroring the on-disk
// layout under <media>/lrc/.
func serveLyrics(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		category := p.ByName("category")
		name := p.ByName("name")

		if category == "" || name == "" ||
			strings.Contains(category, "..") || strings.Contains(name, "..") {
			http.Error(w, "invalid song id", http.StatusBadRequest)
			return
		}

		path := filepath.Join(cfg.mediaDir, "lrc", category, name+".lrc")

		data, err := os.ReadFile(path)
		if err != nil {
			http.Error(w, "lyrics not found", http.StatusNotFound)
			return
		}

		entries := parseLRC(string(data))
		if entries == nil {
			entries = []LyricLine{}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		securityHeaders(cfg, w)

		body, err := json.Marshal(entries)
		if err != nil {
			errs <- err

			return
		}

		if _, err := w.Write(body); err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Lyrics for %q (%d lines) to %s", category+"/"+name, len(entries), realIP(r))
	}
}

// serveMedia serves audio and raw LRC files from the media directory.
// LRC gets an explicit text content type so browsers render it inline.
func serveMedia(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		fname := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, cfg.prefix), "/media/")

		if fname == "" || strings.Contains(fname, "..") {
			http.Error(w, "invalid media path", http.StatusBadRequest)
			return
		}

		path := filepath.Join(cfg.mediaDir, filepath.FromSlash(fname))

		data, err := os.ReadFile(path)
		if err != nil {
			http.Error(w, "media not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		switch strings.ToLower(filepath.Ext(fname)) {
		case ".lrc":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		case ".mp3":
			w.Header().Set("Content-Type", "audio/mpeg")
		}

		written, err := w.Write(data)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Media file %q (%s) to %s",
			fname,
			humanReadableSize(int64(written)),
			realIP(r),
		)
	}
}
