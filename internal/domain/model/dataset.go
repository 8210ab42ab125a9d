package model

// Dataset is an immutable snapshot of entities and the moves they reference.
type Dataset struct {
	Entities []Entity
	Moves    map[string]Move
}

// Entity returns the entity with the given species id.
func (d *Dataset) Entity(id string) (Entity, bool) {
	for _, e := range d.Entities {
		if e.SpeciesID == id {
			return e, true
		}
	}
	return Entity{}, false
}

// ResolveMoves looks up ids in order. Unknown ids are returned separately.
func (d *Dataset) ResolveMoves(ids []string) (moves []Move, missing []string) {
	for _, id := range ids {
		m, ok := d.Moves[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		moves = append(moves, m)
	}
	return moves, missing
}
