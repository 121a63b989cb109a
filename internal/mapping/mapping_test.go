package mapping

import (
	"testing"

	"github.com/lodsb/turntable-core/internal/buttons"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries() []*Entry {
	return []*Entry{
		{Type: TypeIO, GPIOPort: 0, Pin: 3, Pullup: true, EdgeType: buttons.Pressed, Action: ActionPrevFile, DeckNo: 1},
		{Type: TypeIO, GPIOPort: 0, Pin: 3, Pullup: true, EdgeType: buttons.Released, Action: ActionPrevFile, DeckNo: 1},
		{Type: TypeIO, GPIOPort: 1, Pin: 15, Pullup: false, EdgeType: buttons.Pressed, Action: ActionVolUp, DeckNo: 0},
		{Type: TypeIO, GPIOPort: 2, Pin: 5, Pullup: false, EdgeType: buttons.Pressed, Action: ActionGND},
	}
}

func TestFindGPIOExactEdge(t *testing.T) {
	tbl := NewTable(sampleEntries())
	e := tbl.FindGPIO(0, 3, buttons.Pressed)
	require.NotNil(t, e)
	assert.Equal(t, ActionPrevFile, e.Action)

	assert.Nil(t, tbl.FindGPIO(0, 3, buttons.Holding))
}

func TestMaskI2CConflictsRewritesPort1Pins1516(t *testing.T) {
	tbl := NewTable(sampleEntries())
	tbl.MaskI2CConflicts(true)
	e := tbl.FindGPIO(1, 15, buttons.Pressed)
	require.NotNil(t, e)
	assert.Equal(t, ActionNothing, e.Action)
}

func TestMaskI2CConflictsNoopWhenExpanderAbsent(t *testing.T) {
	tbl := NewTable(sampleEntries())
	tbl.MaskI2CConflicts(false)
	e := tbl.FindGPIO(1, 15, buttons.Pressed)
	require.NotNil(t, e)
	assert.Equal(t, ActionVolUp, e.Action)
}

func TestWalkPinConfigMarksGNDAsOutput(t *testing.T) {
	tbl := NewTable(sampleEntries())
	cfgs := tbl.WalkPinConfig()

	found := false
	for _, c := range cfgs {
		if c.Port == 2 && c.Pin == 5 {
			found = true
			assert.True(t, c.Output)
		}
		if c.Port == 0 && c.Pin == 3 {
			assert.False(t, c.Output)
			assert.True(t, c.Pullup)
		}
	}
	assert.True(t, found)
}

type fakeFacade struct {
	prevFileDeck int
	called       int
}

func (f *fakeFacade) NextFile(int)                   {}
func (f *fakeFacade) PrevFile(deck int)               { f.prevFileDeck = deck; f.called++ }
func (f *fakeFacade) RandomFile(int)                  {}
func (f *fakeFacade) SetPitchMode(int)                {}
func (f *fakeFacade) VolUp(int)                       {}
func (f *fakeFacade) VolDown(int)                     {}
func (f *fakeFacade) Record(int)                      {}
func (f *fakeFacade) LoopErase(int)                   {}

type fakeSettings struct{}

func (fakeSettings) DebounceTime() int { return 2 }
func (fakeSettings) HoldTime() int     { return 40 }

type fakeInputState struct{ mode int }

func (s *fakeInputState) PitchMode() int      { return s.mode }
func (s *fakeInputState) SetPitchMode(m int)  { s.mode = m }

func TestDispatchRoutesPrevFileToCorrectDeck(t *testing.T) {
	entry := &Entry{Action: ActionPrevFile, DeckNo: 1}
	facade := &fakeFacade{}
	Dispatch(entry, nil, facade, fakeSettings{}, &fakeInputState{})
	assert.Equal(t, 1, facade.called)
	assert.Equal(t, 1, facade.prevFileDeck)
}

func TestDispatchGNDAndNothingAreNoops(t *testing.T) {
	facade := &fakeFacade{}
	Dispatch(&Entry{Action: ActionGND}, nil, facade, fakeSettings{}, &fakeInputState{})
	Dispatch(&Entry{Action: ActionNothing}, nil, facade, fakeSettings{}, &fakeInputState{})
	assert.Equal(t, 0, facade.called)
}
