package system

import (
	"fmt"

	"github.com/petgo/petgo/internal/core/queue"
	coresys "github.com/petgo/petgo/internal/core/system"
	"github.com/petgo/petgo/internal/data"
	"github.com/petgo/petgo/internal/world"
)

// InventorySystem owns the item stacks. Using an item removes it from the
// inventory and enqueues the matching care update. Items never touch the
// pet directly, so their effects flow through the same handlers as direct
// actions.
type InventorySystem struct {
	coresys.Base
	items *data.ItemTable
}

func NewInventorySystem(items *data.ItemTable) *InventorySystem {
	return &InventorySystem{
		Base:  coresys.NewBase("inventory"),
		items: items,
	}
}

func (s *InventorySystem) HandledUpdates() []queue.UpdateType {
	return []queue.UpdateType{UpdateItemAdd, UpdateItemUse}
}

func (s *InventorySystem) HandleUpdate(u *queue.Update, st *world.State) (*world.State, error) {
	p, ok := u.Payload.(ItemPayload)
	if !ok {
		return nil, fmt.Errorf("bad item payload %T", u.Payload)
	}
	tmpl := s.items.Get(p.ItemID)
	if tmpl == nil {
		return nil, fmt.Errorf("unknown item %q", p.ItemID)
	}

	switch u.Type {
	case UpdateItemAdd:
		if p.Count <= 0 {
			return nil, fmt.Errorf("item add count must be positive, got %d", p.Count)
		}
		next := st.Clone()
		next.Inventory.Add(p.ItemID, p.Count)
		return next, nil

	case UpdateItemUse:
		if err := usable(tmpl, st); err != nil {
			return nil, err
		}
		next := st.Clone()
		if !next.Inventory.Remove(p.ItemID, 1) {
			return nil, fmt.Errorf("no %s in inventory", tmpl.Name)
		}
		s.applyEffect(tmpl)
		return next, nil

	default:
		return nil, fmt.Errorf("unexpected update type %s", u.Type)
	}
}

// usable enforces the same preconditions the care handlers apply to the
// routed effect, so a rejected effect cannot consume the item first.
func usable(tmpl *data.ItemTemplate, st *world.State) error {
	switch tmpl.Kind {
	case data.ItemFood:
		_, err := awakePet(st)
		return err
	case data.ItemToy:
		pet, err := awakePet(st)
		if err != nil {
			return err
		}
		if pet.Sick {
			return fmt.Errorf("%s is too sick to play", pet.Name)
		}
		if pet.Stats.Energy < tmpl.Energy {
			return fmt.Errorf("%s is too tired to play", pet.Name)
		}
	case data.ItemMedicine:
		if st.Pet == nil || !st.Pet.Alive {
			return fmt.Errorf("no living pet")
		}
	}
	return nil
}

// applyEffect routes an item's effect as a care update.
func (s *InventorySystem) applyEffect(tmpl *data.ItemTemplate) {
	switch tmpl.Kind {
	case data.ItemFood:
		s.Writer().Emit(UpdateFeed, FeedPayload{Hunger: tmpl.Hunger, Happiness: tmpl.Happiness})
	case data.ItemMedicine:
		s.Writer().Emit(UpdateMedicine, MedicinePayload{Health: tmpl.Health})
	case data.ItemToy:
		s.Writer().Emit(UpdatePlay, PlayPayload{Happiness: tmpl.Happiness, Energy: tmpl.Energy})
	}
}
