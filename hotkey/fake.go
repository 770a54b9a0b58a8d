package hotkey

// FakeListener drives the pipeline from tests.
type FakeListener struct {
	events chan Action
	regErr error
}

func NewFake() *FakeListener {
	return &FakeListener{events: make(chan Action, 4)}
}

// NewFakeFailing returns a listener whose Register fails, for exercising
// configuration-error paths.
func NewFakeFailing(err error) *FakeListener {
	return &FakeListener{events: make(chan Action, 4), regErr: err}
}

func (f *FakeListener) Register() error        { return f.regErr }
func (f *FakeListener) Unregister()            {}
func (f *FakeListener) Events() <-chan Action  { return f.events }
func (f *FakeListener) Fire(a Action)          { f.events <- a }
