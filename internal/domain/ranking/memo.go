package ranking

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/raidtier/internal/domain/battle"
	"github.com/okian/raidtier/internal/domain/model"
)

// Memo stores computed views by content key. Views are deterministic
// functions of their key, so a hit is interchangeable with a recompute.
type Memo interface {
	Get(ctx context.Context, key string) (*View, bool)
	Set(ctx context.Context, key string, v *View)
}

// DatasetHash fingerprints a dataset's content. Moves encode with sorted
// keys, so only entity order and content affect the result.
func DatasetHash(ds *model.Dataset) uint64 {
	d := xxhash.New()
	enc := json.NewEncoder(d)
	// Encoding plain data structs into a hash cannot fail.
	_ = enc.Encode(ds.Entities)
	_ = enc.Encode(ds.Moves)
	return d.Sum64()
}

// memoKey combines the dataset fingerprint, the view and every setting that
// changes its output.
func (a *Aggregator) memoKey(ds *model.Dataset, kind Kind, param string) string {
	d := xxhash.New()
	_, _ = d.WriteString(strconv.FormatUint(DatasetHash(ds), 16))
	_, _ = d.WriteString("|" + string(kind) + "|" + param)
	_, _ = d.WriteString("|" + a.fingerprint())
	return string(kind) + ":" + strconv.FormatUint(d.Sum64(), 16)
}

func (a *Aggregator) fingerprint() string {
	b, _ := json.Marshal(struct {
		Classes  int
		Labels   []string
		Settings battle.Settings
	}{a.numClasses, a.labels, a.calc.Settings()})
	return string(b)
}
