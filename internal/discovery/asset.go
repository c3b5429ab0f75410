package discovery

// Category classifies where an asset was found.
type Category string

const (
	CategoryImage      Category = "image"
	CategoryBackground Category = "background"
	CategoryRaster     Category = "raster"
)

// Asset is one discovered resource. Width and Height are zero when unknown.
type Asset struct {
	Locator  string   `json:"locator"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Category Category `json:"category"`
}

// candidate is a raw locator pulled from a node, before canonicalization.
type candidate struct {
	raw      string
	width    int
	height   int
	category Category
}

// workingSet is the invocation-scoped, insertion-ordered set of assets keyed
// by canonical locator.
type workingSet struct {
	seen   map[string]struct{}
	assets []Asset
}

func newWorkingSet() *workingSet {
	return &workingSet{seen: make(map[string]struct{})}
}

// add inserts a when its locator is new and reports whether it did.
func (w *workingSet) add(a Asset) bool {
	if _, ok := w.seen[a.Locator]; ok {
		return false
	}
	w.seen[a.Locator] = struct{}{}
	w.assets = append(w.assets, a)
	return true
}

// merge folds a nested walk's assets in, keeping their order.
func (w *workingSet) merge(assets []Asset) {
	for _, a := range assets {
		w.add(a)
	}
}
