package ledger

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.etcd.io/bbolt"
)

const (
	itemsBucketName = "items"
	salesBucketName = "sales"
)

// Store defines the ledger operations consumed by the rest of the
// system.
type Store interface {
	// AddOrMerge inserts a new item or merges into the existing row:
	// quantities add, descriptive fields take the incoming values.
	AddOrMerge(ownerID string, incoming Item) (*MergeResult, error)

	// RecordSale atomically inserts a sale and decrements the item
	// quantity. It fails with *InsufficientStockError and changes
	// nothing when the stock cannot cover the sale.
	RecordSale(ownerID, itemName string, quantity float64, unitPrice decimal.Decimal) (*Sale, error)

	// GetItem retrieves an item by its case-insensitive name.
	GetItem(ownerID, name string) (*Item, error)

	// ListItems returns all of an owner's items sorted by name.
	ListItems(ownerID string) ([]Item, error)

	// LowStock returns items with 0 < quantity <= threshold, ascending
	// by quantity.
	LowStock(ownerID string, threshold float64) ([]Item, error)

	// Expiring returns items expiring within the given number of days,
	// ascending by expiry date.
	Expiring(ownerID string, days int) ([]Item, error)

	// ListSales returns all of an owner's sales.
	ListSales(ownerID string) ([]Sale, error)

	// Close closes the store.
	Close() error
}

// IDGenerator generates unique IDs for sales transactions.
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time.
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

type systemTimeSource struct{}

func (systemTimeSource) Now() time.Time {
	return time.Now()
}

// BoltStore implements Store on bbolt. Every mutation runs inside a
// single bbolt update transaction, which serializes writers and makes
// the sale insert-and-decrement pair all-or-nothing.
type BoltStore struct {
	db          *bbolt.DB
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewBoltStore opens (or creates) a ledger database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	return NewBoltStoreWithDeps(path, uuidGenerator{}, systemTimeSource{})
}

// NewBoltStoreWithDeps opens a ledger database with custom dependencies
// for testing.
func NewBoltStoreWithDeps(path string, idGen IDGenerator, timeSrc TimeSource) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(itemsBucketName)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(salesBucketName)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltStore{
		db:          db,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}, nil
}

// ownerBucket returns the per-owner sub-bucket, creating it when the
// transaction is writable.
func ownerBucket(tx *bbolt.Tx, top, ownerID string) (*bbolt.Bucket, error) {
	parent := tx.Bucket([]byte(top))
	if tx.Writable() {
		return parent.CreateBucketIfNotExists([]byte(ownerID))
	}
	return parent.Bucket([]byte(ownerID)), nil
}

// AddOrMerge inserts a new item or merges into the existing row.
func (s *BoltStore) AddOrMerge(ownerID string, incoming Item) (*MergeResult, error) {
	if err := validateItem(incoming.Name, incoming.Price, incoming.Quantity); err != nil {
		return nil, err
	}

	var result MergeResult
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := ownerBucket(tx, itemsBucketName, ownerID)
		if err != nil {
			return err
		}

		key := []byte(itemKey(incoming.Name))
		now := s.timeSource.Now()

		item := Item{
			OwnerID:    ownerID,
			Name:       incoming.Name,
			Price:      incoming.Price,
			Quantity:   incoming.Quantity,
			Unit:       incoming.Unit,
			Category:   incoming.Category,
			ExpiryDate: incoming.ExpiryDate,
			UpdatedAt:  now,
		}

		if data := bucket.Get(key); data != nil {
			var existing Item
			if err := json.Unmarshal(data, &existing); err != nil {
				return fmt.Errorf("unmarshaling item: %w", err)
			}
			// Additive on quantity, last-write-wins on everything else.
			item.Quantity = existing.Quantity + incoming.Quantity
			result = MergeResult{Created: false, Quantity: item.Quantity}
		} else {
			result = MergeResult{Created: true, Quantity: item.Quantity}
		}

		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshaling item: %w", err)
		}
		return bucket.Put(key, data)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// RecordSale is the guarded sale path: it never lets quantity go
// negative.
func (s *BoltStore) RecordSale(ownerID, itemName string, quantity float64, unitPrice decimal.Decimal) (*Sale, error) {
	if err := validateSale(itemName, quantity, unitPrice); err != nil {
		return nil, err
	}

	var sale *Sale
	err := s.db.Update(func(tx *bbolt.Tx) error {
		items, err := ownerBucket(tx, itemsBucketName, ownerID)
		if err != nil {
			return err
		}

		key := []byte(itemKey(itemName))
		data := items.Get(key)
		if data == nil {
			return fmt.Errorf("%w: %s", ErrItemNotFound, itemName)
		}

		var item Item
		if err := json.Unmarshal(data, &item); err != nil {
			return fmt.Errorf("unmarshaling item: %w", err)
		}

		if quantity > item.Quantity {
			return &InsufficientStockError{
				ItemName:  item.Name,
				Available: item.Quantity,
				Requested: quantity,
			}
		}

		now := s.timeSource.Now()
		item.Quantity -= quantity
		item.UpdatedAt = now

		updated, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshaling item: %w", err)
		}
		if err := items.Put(key, updated); err != nil {
			return err
		}

		sale = &Sale{
			ID:        s.idGenerator.Generate(),
			OwnerID:   ownerID,
			ItemName:  item.Name,
			Quantity:  quantity,
			UnitPrice: unitPrice,
			Total:     unitPrice.Mul(decimal.NewFromFloat(quantity)),
			SaleDate:  now,
		}
		sales, err := ownerBucket(tx, salesBucketName, ownerID)
		if err != nil {
			return err
		}
		saleData, err := json.Marshal(sale)
		if err != nil {
			return fmt.Errorf("marshaling sale: %w", err)
		}
		return sales.Put([]byte(sale.ID), saleData)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// GetItem retrieves an item by its case-insensitive name.
func (s *BoltStore) GetItem(ownerID, name string) (*Item, error) {
	var item *Item
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket, err := ownerBucket(tx, itemsBucketName, ownerID)
		if err != nil {
			return err
		}
		if bucket == nil {
			return fmt.Errorf("%w: %s", ErrItemNotFound, name)
		}
		data := bucket.Get([]byte(itemKey(name)))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrItemNotFound, name)
		}
		return json.Unmarshal(data, &item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListItems returns all of an owner's items sorted by name.
func (s *BoltStore) ListItems(ownerID string) ([]Item, error) {
	items, err := s.collectItems(ownerID, func(Item) bool { return true })
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		return itemKey(items[i].Name) < itemKey(items[j].Name)
	})
	return items, nil
}

// LowStock returns items with 0 < quantity <= threshold, ascending by
// quantity.
func (s *BoltStore) LowStock(ownerID string, threshold float64) ([]Item, error) {
	items, err := s.collectItems(ownerID, func(it Item) bool {
		return it.Quantity > 0 && it.Quantity <= threshold
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Quantity < items[j].Quantity
	})
	return items, nil
}

// Expiring returns items whose expiry falls within [today, today+days],
// ascending by expiry date.
func (s *BoltStore) Expiring(ownerID string, days int) ([]Item, error) {
	now := s.timeSource.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	cutoff := today.AddDate(0, 0, days)

	items, err := s.collectItems(ownerID, func(it Item) bool {
		if it.ExpiryDate == nil {
			return false
		}
		return !it.ExpiryDate.Before(today) && !it.ExpiryDate.After(cutoff)
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ExpiryDate.Before(*items[j].ExpiryDate)
	})
	return items, nil
}

func (s *BoltStore) collectItems(ownerID string, keep func(Item) bool) ([]Item, error) {
	items := make([]Item, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket, err := ownerBucket(tx, itemsBucketName, ownerID)
		if err != nil {
			return err
		}
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			var item Item
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("unmarshaling item: %w", err)
			}
			if keep(item) {
				items = append(items, item)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListSales returns all of an owner's sales, newest first.
func (s *BoltStore) ListSales(ownerID string) ([]Sale, error) {
	sales := make([]Sale, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket, err := ownerBucket(tx, salesBucketName, ownerID)
		if err != nil {
			return err
		}
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			var sale Sale
			if err := json.Unmarshal(v, &sale); err != nil {
				return fmt.Errorf("unmarshaling sale: %w", err)
			}
			sales = append(sales, sale)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(sales, func(i, j int) bool {
		return sales[i].SaleDate.After(sales[j].SaleDate)
	})
	return sales, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
