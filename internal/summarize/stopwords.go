package summarize

import (
	"bufio"
	"embed"
	"strings"
	"sync"
)

//go:embed stopwords/*.txt
var stopwordFS embed.FS

var (
	stopwordMu    sync.Mutex
	stopwordCache = map[string]map[string]struct{}{}
)

// StopWords returns the stop-word set for lang ("spanish", "english").
// ok is false when no list is bundled for the language.
func StopWords(lang string) (words map[string]struct{}, ok bool) {
	lang = strings.ToLower(strings.TrimSpace(lang))

	stopwordMu.Lock()
	defer stopwordMu.Unlock()

	if ws, ok := stopwordCache[lang]; ok {
		return ws, true
	}

	f, err := stopwordFS.Open("stopwords/" + lang + ".txt")
	if err != nil {
		return nil, false
	}
	defer f.Close()

	ws := make(map[string]struct{})
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if w := strings.TrimSpace(sc.Text()); w != "" {
			ws[w] = struct{}{}
		}
	}
	if sc.Err() != nil || len(ws) == 0 {
		return nil, false
	}
	stopwordCache[lang] = ws
	return ws, true
}
