package inventory_test

import (
	"errors"
	"testing"

	"pgregory.net/rapid"

	"github.com/dianahille/pyphoria/internal/game/inventory"
	"github.com/dianahille/pyphoria/internal/game/loot"
)

func swordDef() *inventory.ItemDef {
	return &inventory.ItemDef{ID: "sword", Name: "Sword", Type: inventory.TypeWeapon, MaxStack: 1}
}

func herbDef(maxStack int) *inventory.ItemDef {
	return &inventory.ItemDef{ID: "herb", Name: "Herb", Type: inventory.TypeConsumable, Stackable: true, MaxStack: maxStack}
}

func crownDef() *inventory.ItemDef {
	return &inventory.ItemDef{ID: "crown", Name: "Crown", Type: inventory.TypeQuest, MaxStack: 1, UniqueStore: true}
}

func makeRegistry(defs ...*inventory.ItemDef) *inventory.Registry {
	reg := inventory.NewRegistry()
	for _, d := range defs {
		_ = reg.RegisterItem(d)
	}
	return reg
}

func TestInventory_Add_SingleItem(t *testing.T) {
	reg := makeRegistry(swordDef())
	inv := inventory.New("c1", inventory.DefaultSlots)

	st, err := inv.Add("sword", 1, reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.ItemID != "sword" || st.Quantity != 1 || st.InstanceID == "" {
		t.Errorf("unexpected stack %+v", *st)
	}
	if inv.UsedSlots() != 1 || inv.FreeSlots() != 9 {
		t.Errorf("got used=%d free=%d, want 1/9", inv.UsedSlots(), inv.FreeSlots())
	}
}

func TestInventory_Add_StackableMergesThenOverflows(t *testing.T) {
	reg := makeRegistry(herbDef(10))
	inv := inventory.New("c1", 3)

	first, err := inv.Add("herb", 7, reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := inv.Add("herb", 2, reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.InstanceID != first.InstanceID || second.Quantity != 9 {
		t.Errorf("expected merge into existing stack, got %+v", *second)
	}

	if _, err := inv.Add("herb", 12, reg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.UsedSlots() != 3 {
		t.Errorf("got UsedSlots=%d, want 3", inv.UsedSlots())
	}
	if inv.Count("herb") != 21 {
		t.Errorf("got Count=%d, want 21", inv.Count("herb"))
	}
}

func TestInventory_Add_IsAtomicWhenFull(t *testing.T) {
	reg := makeRegistry(herbDef(5))
	inv := inventory.New("c1", 2)
	if _, err := inv.Add("herb", 3, reg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := inv.Add("herb", 10, reg)
	if !errors.Is(err, inventory.ErrNoSlots) {
		t.Fatalf("expected ErrNoSlots, got %v", err)
	}
	if inv.Count("herb") != 3 || inv.UsedSlots() != 1 {
		t.Errorf("inventory changed on failed add: count=%d used=%d", inv.Count("herb"), inv.UsedSlots())
	}
}

func TestInventory_Add_UniqueStoreRefusesSecondCopy(t *testing.T) {
	reg := makeRegistry(crownDef())
	inv := inventory.New("c1", 5)
	if _, err := inv.Add("crown", 1, reg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := inv.Add("crown", 1, reg); !errors.Is(err, inventory.ErrUniqueStored) {
		t.Fatalf("expected ErrUniqueStored, got %v", err)
	}
	if _, err := inventory.New("c2", 5).Add("crown", 2, reg); !errors.Is(err, inventory.ErrUniqueStored) {
		t.Fatalf("expected ErrUniqueStored for quantity 2, got %v", err)
	}
}

func TestInventory_Add_UnknownItem(t *testing.T) {
	inv := inventory.New("c1", 5)
	if _, err := inv.Add("ghost", 1, makeRegistry()); !errors.Is(err, inventory.ErrUnknownItem) {
		t.Fatalf("expected ErrUnknownItem, got %v", err)
	}
}

func TestInventory_AddDrop_KeepsRolledValues(t *testing.T) {
	reg := makeRegistry(swordDef())
	inv := inventory.New("c1", 5)
	drop := loot.Drop{InstanceID: "d-1", ItemTemplateID: "sword", ItemLevel: 14, Tier: 3, Stats: map[string]int{"damage": 22}}

	st, err := inv.AddDrop(drop, reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.InstanceID != "d-1" || st.ItemLevel != 14 || st.Tier != 3 || st.Stats["damage"] != 22 {
		t.Errorf("rolled values lost: %+v", *st)
	}

	drop.Stats["damage"] = 1
	if inv.Items()[0].Stats["damage"] != 22 {
		t.Error("stored stats alias the drop's map")
	}
}

func TestInventory_AddDrops_ReportsRejections(t *testing.T) {
	reg := makeRegistry(swordDef(), herbDef(50), crownDef())
	inv := inventory.New("c1", 3)
	drops := []loot.Drop{
		{InstanceID: "1", ItemTemplateID: "herb"},
		{InstanceID: "2", ItemTemplateID: "herb"},
		{InstanceID: "3", ItemTemplateID: "crown"},
		{InstanceID: "4", ItemTemplateID: "crown"},
		{InstanceID: "5", ItemTemplateID: "sword"},
		{InstanceID: "6", ItemTemplateID: "sword"},
		{InstanceID: "7", ItemTemplateID: "unknown"},
	}

	stored, rejected := inv.AddDrops(drops, reg)
	if stored != 4 {
		t.Errorf("got stored=%d, want 4", stored)
	}
	if len(rejected) != 3 {
		t.Fatalf("got %d rejections, want 3", len(rejected))
	}
	if !errors.Is(rejected[0].Err, inventory.ErrUniqueStored) {
		t.Errorf("expected unique rejection first, got %v", rejected[0].Err)
	}
	if !errors.Is(rejected[1].Err, inventory.ErrNoSlots) {
		t.Errorf("expected slot rejection second, got %v", rejected[1].Err)
	}
	if !errors.Is(rejected[2].Err, inventory.ErrUnknownItem) {
		t.Errorf("expected unknown item rejection third, got %v", rejected[2].Err)
	}
	if inv.Count("herb") != 2 {
		t.Errorf("stackable drops should merge, got count %d", inv.Count("herb"))
	}
}

func TestInventory_Remove(t *testing.T) {
	reg := makeRegistry(herbDef(10))
	inv := inventory.New("c1", 2)
	st, err := inv.Add("herb", 5, reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id := st.InstanceID

	if err := inv.Remove(id, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Count("herb") != 3 {
		t.Errorf("got Count=%d, want 3", inv.Count("herb"))
	}
	if err := inv.Remove(id, 4); err == nil {
		t.Error("expected error removing more than held")
	}
	if err := inv.Remove(id, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.UsedSlots() != 0 {
		t.Errorf("empty stack should free its slot, used=%d", inv.UsedSlots())
	}
	if err := inv.Remove("missing", 1); err == nil {
		t.Error("expected error for missing stack")
	}
}

func TestInventory_Gold(t *testing.T) {
	inv := inventory.New("c1", 1)
	if err := inv.AddGold(30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := inv.SpendGold(40); err == nil {
		t.Fatal("expected error overspending")
	}
	if err := inv.SpendGold(10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Gold != 20 {
		t.Errorf("got Gold=%d, want 20", inv.Gold)
	}
	if err := inv.AddGold(-1); err == nil {
		t.Error("expected error for negative gold")
	}
}

func TestInventory_Restore(t *testing.T) {
	inv := inventory.Restore("c1", 4, 12, []inventory.Stack{{InstanceID: "a", ItemID: "herb", Quantity: 3}})
	if inv.UsedSlots() != 1 || inv.Gold != 12 || inv.Count("herb") != 3 {
		t.Errorf("unexpected restored inventory: used=%d gold=%d", inv.UsedSlots(), inv.Gold)
	}
}

func TestProperty_SlotLimitNeverExceeded(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxStack := rapid.IntRange(1, 20).Draw(rt, "maxStack")
		slots := rapid.IntRange(0, 8).Draw(rt, "slots")
		reg := makeRegistry(herbDef(maxStack), swordDef())
		inv := inventory.New("c1", slots)

		ops := rapid.IntRange(1, 20).Draw(rt, "ops")
		for i := 0; i < ops; i++ {
			id := rapid.SampledFrom([]string{"herb", "sword"}).Draw(rt, "item")
			q := rapid.IntRange(1, 30).Draw(rt, "quantity")
			before := inv.Count(id)
			_, err := inv.Add(id, q, reg)
			if err == nil && inv.Count(id) != before+q {
				rt.Fatalf("count %d after adding %d to %d", inv.Count(id), q, before)
			}
			if inv.UsedSlots() > slots {
				rt.Fatalf("used %d slots of %d", inv.UsedSlots(), slots)
			}
		}
		for _, st := range inv.Items() {
			if st.Quantity < 1 || (st.ItemID == "herb" && st.Quantity > maxStack) {
				rt.Fatalf("stack quantity %d out of range", st.Quantity)
			}
		}
	})
}
