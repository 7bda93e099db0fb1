/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/antzucaro/matchr"
	"github.com/julienschmidt/httprouter"
)

// Song is one catalog entry. IDs take the form "<category>/<name>", where
// name is "<artist>_<title>" on disk, matching the media layout:
//
//	<media>/audio/<category>/<artist>_<title>.mp3
//	<media>/lrc/<category>/<artist>_<title>.lrc
type Song struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Artist string `json:"artist"`
	HasLrc bool   `json:"has_lrc"`
}

// scanCatalog walks the media directory and returns songs grouped by
// category. Missing or empty directories yield an empty catalog, never an
// error; a karaoke host with no songs is a configuration problem, not a
// crash.
func scanCatalog(mediaDir string) map[string][]Song {
	catalog := make(map[string][]Song)

	if mediaDir == "" {
		return catalog
	}

	audioDir := filepath.Join(mediaDir, "audio")

	categories, err := os.ReadDir(audioDir)
	if err != nil {
		return catalog
	}

	for _, category := range categories {
		if !category.IsDir() {
			continue
		}

		files, err := os.ReadDir(filepath.Join(audioDir, category.Name()))
		if err != nil {
			continue
		}

		var songs []Song

		for _, file := range files {
			if file.IsDir() || !strings.EqualFold(filepath.Ext(file.Name()), ".mp3") {
				continue
			}

			base := strings.TrimSuffix(file.Name(), filepath.Ext(file.Name()))

			artist, title := "", base
			if i := strings.Index(base, "_"); i > 0 {
				artist, title = base[:i], base[i+1:]
			}

			lrcPath := filepath.Join(mediaDir, "lrc", category.Name(), base+".lrc")
			_, lrcErr := os.Stat(lrcPath)

			songs = append(songs, Song{
				ID:     category.Name() + "/" + base,
				Name:   title,
				Artist: artist,
				HasLrc: lrcErr == nil,
			})
		}

		if len(songs) > 0 {
			sort.Slice(songs, func(i, j int) bool {
				return songs[i].ID < songs[j].ID
			})
			catalog[category.Name()] = songs
		}
	}

	return catalog
}

// searchCatalog ranks songs against a free-text query by the best
// Jaro-Winkler similarity across title, artist, and id, keeping matches
// above minScore in descending score order. Comparison happens on
// normalized text so punctuation and width variants don't hurt the score.
func searchCatalog(catalog map[string][]Song, query string, minScore float64) []Song {
	query = normalizeText(query)
	if query == "" {
		return nil
	}

	type scored struct {
		song  Song
		score float64
	}

	var candidates []scored

	for _, songs := range catalog {
		for _, song := range songs {
			score := matchr.JaroWinkler(query, normalizeText(song.Name), false)
			if s := matchr.JaroWinkler(query, normalizeText(song.Artist), false); s > score {
				score = s
			}
			if s := matchr.JaroWinkler(query, normalizeText(song.ID), false); s > score {
				score = s
			}

			if score >= minScore {
				candidates = append(candidates, scored{song: song, score: score})
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].song.ID < candidates[j].song.ID
	})

	results := make([]Song, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, c.song)
	}

	return results
}

const searchMinScore = 0.6

func serveSongList(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		catalog := scanCatalog(cfg.mediaDir)

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		securityHeaders(cfg, w)

		data, err := json.Marshal(catalog)
		if err != nil {
			errs <- err

			return
		}

		written, err := w.Write(data)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Song catalog (%s) to %s in %s",
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveSongSearch(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		query := r.URL.Query().Get("q")

		results := searchCatalog(scanCatalog(cfg.mediaDir), query, searchMinScore)
		if results == nil {
			results = []Song{}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		securityHeaders(cfg, w)

		data, err := json.Marshal(results)
		if err != nil {
			errs <- err

			return
		}

		if _, err := w.Write(data); err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Song search %q (%d results) to %s", query, len(results), realIP(r))
	}
}
