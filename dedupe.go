package shotman

import (
	"sync"

	"github.com/glaslos/ssdeep"
	"github.com/root4loot/goutils/log"
)

// dupeIndex tracks fuzzy hashes of captured images so near-duplicates can
// be skipped. Safe for concurrent use by pool workers.
type dupeIndex struct {
	mutex  sync.Mutex
	hashes []string
}

func newDupeIndex() *dupeIndex {
	return &dupeIndex{}
}

// isDuplicate checks the image against all previously seen captures and
// records its hash. Images that cannot be hashed are treated as unique.
func (d *dupeIndex) isDuplicate(image []byte, similarityThreshold int) bool {
	if similarityThreshold < 1 || similarityThreshold > 100 {
		log.Warnf("Invalid similarity threshold: %d. Must be between 1 and 100", similarityThreshold)
		return false
	}

	hash, err := ssdeep.FuzzyBytes(image)
	if err != nil {
		log.Debugf("Could not perform uniqueness check: %v", err)
		return false
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	for _, seen := range d.hashes {
		score, err := ssdeep.Distance(hash, seen)
		if err != nil {
			continue
		}
		if score >= similarityThreshold {
			return true
		}
	}

	d.hashes = append(d.hashes, hash)
	return false
}
