package digest

import "hash/fnv"

// DefaultMarkers decorate article headlines.
var DefaultMarkers = []string{"📰", "🌍", "🔍", "📡", "💡", "🌐", "📊", "🗞️", "📝", "🚀"}

// Marker picks a decoration for title. FNV-1a over the title bytes keeps the
// choice identical across runs, processes and channels for the same marker set.
func Marker(title string, markers []string) string {
	if len(markers) == 0 {
		return ""
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(title))
	return markers[h.Sum32()%uint32(len(markers))]
}
