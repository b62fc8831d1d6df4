package dom

// MutationType classifies a MutationRecord.
type MutationType uint8

// Mutation types.
const (
	MutationChildList MutationType = iota + 1
	MutationCharacterData
	MutationAttributes
)

// String returns the record type name.
func (t MutationType) String() string {
	switch t {
	case MutationChildList:
		return "childList"
	case MutationCharacterData:
		return "characterData"
	case MutationAttributes:
		return "attributes"
	default:
		return "unknown"
	}
}

// MutationRecord describes one change to the tree.
type MutationRecord struct {
	Type MutationType

	// Target is the parent for childList records, the changed node otherwise.
	Target *Node

	AddedNodes      []*Node
	RemovedNodes    []*Node
	PreviousSibling *Node
	NextSibling     *Node

	AttributeName string
	OldValue      string
}

// MutationCallback receives a batch of records.
type MutationCallback func(records []MutationRecord)

// MutationObserver collects records for changes inside one root.
type MutationObserver struct {
	doc      *Document
	root     *Node
	callback MutationCallback
	pending  []MutationRecord
}

// NewMutationObserver creates an observer that is not yet observing anything.
func (d *Document) NewMutationObserver(callback MutationCallback) *MutationObserver {
	return &MutationObserver{doc: d, callback: callback}
}

// Observe starts recording changes to root and its descendants.
func (o *MutationObserver) Observe(root *Node) {
	o.root = root
	o.doc.addObserver(o)
}

// Disconnect stops recording and drops pending records.
func (o *MutationObserver) Disconnect() {
	o.doc.removeObserver(o)
	o.root = nil
	o.pending = nil
}

// IsObserving reports whether the observer is connected.
func (o *MutationObserver) IsObserving() bool {
	return o.root != nil
}

// TakeRecords returns and clears the pending records without invoking the callback.
func (o *MutationObserver) TakeRecords() []MutationRecord {
	records := o.pending
	o.pending = nil
	return records
}

// Pending returns the number of queued records.
func (o *MutationObserver) Pending() int {
	return len(o.pending)
}

// Flush delivers pending records to the callback as one batch.
func (o *MutationObserver) Flush() {
	records := o.TakeRecords()
	if len(records) == 0 || o.callback == nil {
		return
	}
	o.callback(records)
}

func (o *MutationObserver) enqueue(rec MutationRecord) {
	if o.root == nil || !o.root.Contains(rec.Target) {
		return
	}
	o.pending = append(o.pending, rec)
}
