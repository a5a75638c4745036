package inventory

import (
	"errors"
	"fmt"
	"maps"

	"github.com/google/uuid"

	"github.com/dianahille/pyphoria/internal/game/loot"
)

// DefaultSlots is the slot count of a new character inventory.
const DefaultSlots = 10

var (
	// ErrUnknownItem is returned when an item template is not registered.
	ErrUnknownItem = errors.New("unknown item")
	// ErrNoSlots is returned when an addition needs more free slots than remain.
	ErrNoSlots = errors.New("inventory has no free slots")
	// ErrUniqueStored is returned when a unique_store item is already held.
	ErrUniqueStored = errors.New("unique item already stored")
)

// Stack is one occupied inventory slot.
// Rolled fields are zero for items that did not come from a loot drop.
type Stack struct {
	InstanceID string
	ItemID     string
	Quantity   int
	ItemLevel  int
	Tier       int
	Stats      map[string]int
}

// Inventory is a character's slot-limited item storage plus gold.
// It is not safe for concurrent use.
type Inventory struct {
	CharacterID string
	Slots       int
	Gold        int
	stacks      []Stack
}

// New creates an empty inventory.
//
// Precondition: slots >= 0.
func New(characterID string, slots int) *Inventory {
	return &Inventory{CharacterID: characterID, Slots: slots}
}

// Restore rebuilds an inventory from stored stacks without re-checking rules.
func Restore(characterID string, slots, gold int, stacks []Stack) *Inventory {
	inv := &Inventory{CharacterID: characterID, Slots: slots, Gold: gold}
	inv.stacks = append(inv.stacks, stacks...)
	return inv
}

// Add places quantity units of the given item into the inventory.
// It is atomic: if any rule would be violated, no state is modified.
//
// Stackable items fill existing stacks up to MaxStack before opening new
// slots. Non-stackable items take one slot per unit. A unique_store item
// already held is refused.
//
// Precondition: quantity > 0.
// Postcondition: on success returns the last stack touched; on error the inventory is unchanged.
func (inv *Inventory) Add(itemID string, quantity int, reg *Registry) (*Stack, error) {
	def, ok := reg.Item(itemID)
	if !ok {
		return nil, fmt.Errorf("inventory: %w %q", ErrUnknownItem, itemID)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("inventory: quantity must be > 0")
	}
	if err := inv.checkUnique(def, quantity); err != nil {
		return nil, err
	}
	if def.Stackable {
		return inv.addStackable(def, quantity)
	}
	return inv.addNonStackable(def, quantity)
}

func (inv *Inventory) checkUnique(def *ItemDef, quantity int) error {
	if !def.UniqueStore {
		return nil
	}
	if quantity > 1 || inv.Count(def.ID) > 0 {
		return fmt.Errorf("inventory: %w: %q", ErrUniqueStored, def.ID)
	}
	return nil
}

func (inv *Inventory) addStackable(def *ItemDef, quantity int) (*Stack, error) {
	// Plan merges into existing stacks and count the new slots the remainder needs.
	remaining := quantity
	type merge struct{ idx, take int }
	var merges []merge
	for i := range inv.stacks {
		if remaining == 0 {
			break
		}
		s := inv.stacks[i]
		if s.ItemID != def.ID || s.Quantity >= def.MaxStack {
			continue
		}
		take := min(remaining, def.MaxStack-s.Quantity)
		merges = append(merges, merge{i, take})
		remaining -= take
	}
	newSlots := (remaining + def.MaxStack - 1) / def.MaxStack
	if len(inv.stacks)+newSlots > inv.Slots {
		return nil, fmt.Errorf("inventory: %w for %d more %q", ErrNoSlots, quantity, def.ID)
	}

	var last *Stack
	for _, m := range merges {
		inv.stacks[m.idx].Quantity += m.take
		last = &inv.stacks[m.idx]
	}
	for remaining > 0 {
		q := min(remaining, def.MaxStack)
		inv.stacks = append(inv.stacks, Stack{
			InstanceID: uuid.NewString(),
			ItemID:     def.ID,
			Quantity:   q,
		})
		last = &inv.stacks[len(inv.stacks)-1]
		remaining -= q
	}
	return last, nil
}

func (inv *Inventory) addNonStackable(def *ItemDef, quantity int) (*Stack, error) {
	if len(inv.stacks)+quantity > inv.Slots {
		return nil, fmt.Errorf("inventory: %w for %d %q", ErrNoSlots, quantity, def.ID)
	}
	for i := 0; i < quantity; i++ {
		inv.stacks = append(inv.stacks, Stack{
			InstanceID: uuid.NewString(),
			ItemID:     def.ID,
			Quantity:   1,
		})
	}
	return &inv.stacks[len(inv.stacks)-1], nil
}

// AddDrop stores one rolled loot drop.
//
// Non-stackable drops keep their instance ID, level, tier and stats in a slot
// of their own. Stackable drops merge as a single unit and their rolled values
// are discarded.
//
// Postcondition: on error the inventory is unchanged.
func (inv *Inventory) AddDrop(d loot.Drop, reg *Registry) (*Stack, error) {
	def, ok := reg.Item(d.ItemTemplateID)
	if !ok {
		return nil, fmt.Errorf("inventory: %w %q", ErrUnknownItem, d.ItemTemplateID)
	}
	if def.Stackable {
		return inv.Add(def.ID, 1, reg)
	}
	if err := inv.checkUnique(def, 1); err != nil {
		return nil, err
	}
	if len(inv.stacks) >= inv.Slots {
		return nil, fmt.Errorf("inventory: %w for %q", ErrNoSlots, def.ID)
	}
	inv.stacks = append(inv.stacks, Stack{
		InstanceID: d.InstanceID,
		ItemID:     def.ID,
		Quantity:   1,
		ItemLevel:  d.ItemLevel,
		Tier:       d.Tier,
		Stats:      maps.Clone(d.Stats),
	})
	return &inv.stacks[len(inv.stacks)-1], nil
}

// Rejection records a drop that could not be stored.
type Rejection struct {
	Drop loot.Drop
	Err  error
}

// AddDrops stores drops in order. Each drop is independent: a refused drop
// is reported and the rest are still attempted.
//
// Postcondition: stored + len(rejected) == len(drops).
func (inv *Inventory) AddDrops(drops []loot.Drop, reg *Registry) (stored int, rejected []Rejection) {
	for _, d := range drops {
		if _, err := inv.AddDrop(d, reg); err != nil {
			rejected = append(rejected, Rejection{Drop: d, Err: err})
			continue
		}
		stored++
	}
	return stored, rejected
}

// Remove removes quantity units from the stack identified by instanceID.
//
// Precondition: quantity > 0 and <= the stack's quantity.
// Postcondition: a stack reduced to zero frees its slot.
func (inv *Inventory) Remove(instanceID string, quantity int) error {
	for i := range inv.stacks {
		if inv.stacks[i].InstanceID != instanceID {
			continue
		}
		if quantity <= 0 || quantity > inv.stacks[i].Quantity {
			return fmt.Errorf("inventory: cannot remove %d from stack with quantity %d",
				quantity, inv.stacks[i].Quantity)
		}
		if quantity == inv.stacks[i].Quantity {
			inv.stacks = append(inv.stacks[:i], inv.stacks[i+1:]...)
		} else {
			inv.stacks[i].Quantity -= quantity
		}
		return nil
	}
	return fmt.Errorf("inventory: stack %q not found", instanceID)
}

// AddGold adds amount to the gold counter.
//
// Precondition: amount >= 0.
func (inv *Inventory) AddGold(amount int) error {
	if amount < 0 {
		return fmt.Errorf("inventory: gold amount must be >= 0, got %d", amount)
	}
	inv.Gold += amount
	return nil
}

// SpendGold removes amount from the gold counter.
//
// Postcondition: on error Gold is unchanged; Gold never goes negative.
func (inv *Inventory) SpendGold(amount int) error {
	if amount < 0 {
		return fmt.Errorf("inventory: gold amount must be >= 0, got %d", amount)
	}
	if amount > inv.Gold {
		return fmt.Errorf("inventory: cannot spend %d gold, have %d", amount, inv.Gold)
	}
	inv.Gold -= amount
	return nil
}

// Items returns a snapshot copy of all stacks.
//
// Postcondition: mutations of the result do not affect the inventory.
func (inv *Inventory) Items() []Stack {
	out := make([]Stack, len(inv.stacks))
	for i, s := range inv.stacks {
		s.Stats = maps.Clone(s.Stats)
		out[i] = s
	}
	return out
}

// UsedSlots returns the number of occupied slots.
func (inv *Inventory) UsedSlots() int {
	return len(inv.stacks)
}

// FreeSlots returns the number of unoccupied slots.
func (inv *Inventory) FreeSlots() int {
	return max(inv.Slots-len(inv.stacks), 0)
}

// Count returns the total quantity held of itemID across all stacks.
func (inv *Inventory) Count(itemID string) int {
	n := 0
	for _, s := range inv.stacks {
		if s.ItemID == itemID {
			n += s.Quantity
		}
	}
	return n
}
