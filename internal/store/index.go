package store

// Index is a secondary index mapping an owner id to a set of entity ids.
// Entries are composite keys with an empty value; Scan yields entity ids
// in ascending order.
type Index struct {
	collection string
}

func NewIndex(collection string) Index {
	return Index{collection: collection}
}

func (i Index) Add(tx *Tx, ownerID, entityID uint64) error {
	return tx.Set(i.collection, CompositeKey(ownerID, entityID), nil)
}

func (i Index) Remove(tx *Tx, ownerID, entityID uint64) error {
	return tx.Delete(i.collection, CompositeKey(ownerID, entityID))
}

func (i Index) Scan(tx *Tx, ownerID uint64, fn func(entityID uint64) error) error {
	return tx.ScanPrefix(i.collection, EncodeID(ownerID), func(key, _ []byte) error {
		_, entityID, err := SplitCompositeKey(key)
		if err != nil {
			return err
		}

		return fn(entityID)
	})
}
