package models

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DictionaryEntry is one row of a normalization table: a surface name with a
// stable id. The same struct serves every dictionary table; the table is
// chosen at query time.
type DictionaryEntry struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`
}

// ErrUnknownTable is returned when a table name is not on the dictionary
// allow-list.
var ErrUnknownTable = errors.New("unknown dictionary table")

// dictionaryTables is the allow-list of normalization tables. Every table
// carries a case-insensitive unique index on name (see MigrateCatalog).
var dictionaryTables = []string{
	"brands",
	"materiale",
	"colore",
	"finitura",
	"tipologia",
	"collezione",
	"genere",
	"materiale_cassa",
	"materiale_cinturino",
	"tipologia_movimento",
	"tipologia_cinturino",
	"misura_ansa",
	"pietre",
	"misura_anello",
	"modello_gioielleria",
	"tipo_lenti",
}

func isDictionaryTable(name string) bool {
	for _, t := range dictionaryTables {
		if t == name {
			return true
		}
	}
	return false
}

// resolveDictionary turns a raw attribute value into its dictionary id,
// creating the entry when missing. It runs on the caller's transaction
// handle. Blank input resolves to no value, not an error.
//
// Two transactions can race on the same not-yet-existing name: both miss the
// lookup and both insert. The insert carries ON CONFLICT DO NOTHING, so the
// loser gets zero affected rows instead of a constraint error that would
// abort the surrounding transaction, and answers the miss by re-reading the
// winner's id.
func resolveDictionary(tx *gorm.DB, table, raw string) (*int64, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return nil, nil
	}

	var entry DictionaryEntry
	err := tx.Table(table).Where("LOWER(name) = LOWER(?)", name).Take(&entry).Error
	if err == nil {
		return &entry.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	entry = DictionaryEntry{Name: name}
	res := tx.Table(table).Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var winner DictionaryEntry
		if err := tx.Table(table).Where("LOWER(name) = LOWER(?)", name).Take(&winner).Error; err != nil {
			return nil, err
		}
		return &winner.ID, nil
	}
	return &entry.ID, nil
}

// DictionaryTable returns the full contents of one allow-listed dictionary
// table, for the admin table endpoint.
func (r *ProductsRepository) DictionaryTable(name string) ([]DictionaryEntry, error) {
	if !isDictionaryTable(name) {
		return nil, ErrUnknownTable
	}
	var entries []DictionaryEntry
	if err := r.db.Table(name).Order("name ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
