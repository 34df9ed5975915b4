package geometry

// Base client canvas size for the fixed classic layout. All layout regions
// below are defined against this size and scaled to the real client rect.
const (
	BaseWidth  = 765
	BaseHeight = 503
)

// Control panel tab indices, left to right, top row then bottom row.
const (
	TabCombat = iota
	TabStats
	TabQuests
	TabInventory
	TabEquipment
	TabPrayer
	TabMagic
	TabClan
	TabFriends
	TabAccount
	TabLogout
	TabSettings
	TabEmotes
	TabMusic
)

// InventorySize is the number of inventory slots.
const InventorySize = 28

// Layout holds the absolute screen regions of a located game client.
//
// Regions:
//   - GameView: 3D viewport
//   - Mouseover: top-left strip of the viewport showing hover text
//   - CurrentAction: skilling status overlay below the mouseover strip
//   - Chat / ChatTabs: chat box and its seven filter tabs
//   - ControlPanel / Tabs: side panel and its fourteen tab buttons
//   - InventorySlots: 28 slots in a 4x7 grid
//   - LogoutButton: "Click here to logout" button inside the logout tab
type Layout struct {
	Client         Rect
	GameView       Rect
	Mouseover      Rect
	CurrentAction  Rect
	Chat           Rect
	ChatTabs       [7]Rect
	Minimap        Rect
	ControlPanel   Rect
	Tabs           [14]Rect
	InventorySlots [InventorySize]Rect
	LogoutButton   Rect
	AutoRetaliate  Rect
}

// NewLayout computes all regions for a client occupying the given screen rect.
func NewLayout(client Rect) Layout {
	s := scaler{client: client}
	l := Layout{
		Client:        client,
		GameView:      s.rect(4, 4, 512, 334),
		Mouseover:     s.rect(4, 4, 407, 26),
		CurrentAction: s.rect(14, 28, 128, 18),
		Chat:          s.rect(7, 345, 506, 129),
		Minimap:       s.rect(570, 4, 146, 151),
		ControlPanel:  s.rect(528, 168, 237, 335),
		LogoutButton:  s.rect(576, 432, 144, 24),
		AutoRetaliate: s.rect(567, 368, 160, 45),
	}
	for i := range l.ChatTabs {
		l.ChatTabs[i] = s.rect(5+i*62, 480, 56, 22)
	}
	for i := range l.Tabs {
		col, y := i, 168
		if i >= 7 {
			col, y = i-7, 466
		}
		l.Tabs[i] = s.rect(528+col*33, y, 33, 36)
	}
	for i := range l.InventorySlots {
		col, row := i%InventoryColumns, i/InventoryColumns
		l.InventorySlots[i] = s.rect(563+col*42, 213+row*36, 36, 32)
	}
	return l
}

// InventoryColumns is the width of the inventory grid.
const InventoryColumns = 4

// DropOrder returns the inventory slots in the order a player sweeps them
// while shift-dropping: row by row, reversing direction on every row.
func DropOrder() [InventorySize]int {
	var order [InventorySize]int
	for i := range order {
		row, col := i/InventoryColumns, i%InventoryColumns
		if row%2 == 1 {
			col = InventoryColumns - 1 - col
		}
		order[i] = row*InventoryColumns + col
	}
	return order
}

// Scale maps a base-layout coordinate onto the client rect.
func (l Layout) Scale(baseX, baseY int) Point {
	return scaler{client: l.Client}.point(baseX, baseY)
}

// Region returns the rect for a base-layout rect scaled onto the client.
func (l Layout) Region(x, y, w, h int) Rect {
	return scaler{client: l.Client}.rect(x, y, w, h)
}

type scaler struct {
	client Rect
}

func (s scaler) point(x, y int) Point {
	if s.client.W == 0 || s.client.H == 0 {
		return Point{X: s.client.X + x, Y: s.client.Y + y}
	}
	return Point{
		X: s.client.X + x*s.client.W/BaseWidth,
		Y: s.client.Y + y*s.client.H/BaseHeight,
	}
}

func (s scaler) rect(x, y, w, h int) Rect {
	tl := s.point(x, y)
	br := s.point(x+w, y+h)
	return Rect{X: tl.X, Y: tl.Y, W: br.X - tl.X, H: br.Y - tl.Y}
}
