// ==============================================
// File: internal/curve/codec.go
// ==============================================
package curve

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ConfigRecordSize is the fixed byte size of a persisted curve config:
// authority(32) collection(32) kind(1) base_price(8) increment(8)
// max_supply(4) current_supply(4) total_volume(8) floor(8) ceiling(8)
// bump(1).
const ConfigRecordSize = 32 + 32 + 1 + 8 + 8 + 4 + 4 + 8 + 8 + 8 + 1

// MarshalConfig serializes the config into its fixed little-endian
// record layout.
func MarshalConfig(c *Config) []byte {
	data := make([]byte, ConfigRecordSize)
	copy(data[0:32], c.Authority.Bytes())
	copy(data[32:64], c.CollectionMint.Bytes())
	data[64] = byte(c.Kind)
	binary.LittleEndian.PutUint64(data[65:73], c.BasePrice)
	binary.LittleEndian.PutUint64(data[73:81], c.PriceIncrement)
	binary.LittleEndian.PutUint32(data[81:85], c.MaxSupply)
	binary.LittleEndian.PutUint32(data[85:89], c.CurrentSupply)
	binary.LittleEndian.PutUint64(data[89:97], c.TotalVolume)
	binary.LittleEndian.PutUint64(data[97:105], c.PriceFloor)
	binary.LittleEndian.PutUint64(data[105:113], c.PriceCeiling)
	data[113] = c.Bump
	return data
}

// UnmarshalConfig parses a persisted curve config record.
func UnmarshalConfig(data []byte) (*Config, error) {
	if len(data) < ConfigRecordSize {
		return nil, fmt.Errorf("insufficient curve config data length: %d", len(data))
	}
	c := &Config{}
	c.Authority = solana.PublicKeyFromBytes(data[0:32])
	c.CollectionMint = solana.PublicKeyFromBytes(data[32:64])
	c.Kind = Kind(data[64])
	c.BasePrice = binary.LittleEndian.Uint64(data[65:73])
	c.PriceIncrement = binary.LittleEndian.Uint64(data[73:81])
	c.MaxSupply = binary.LittleEndian.Uint32(data[81:85])
	c.CurrentSupply = binary.LittleEndian.Uint32(data[85:89])
	c.TotalVolume = binary.LittleEndian.Uint64(data[89:97])
	c.PriceFloor = binary.LittleEndian.Uint64(data[97:105])
	c.PriceCeiling = binary.LittleEndian.Uint64(data[105:113])
	c.Bump = data[113]
	if !c.Kind.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, c.Kind)
	}
	return c, nil
}

// MarshalTable serializes a lookup table: owning curve(32) count(4)
// prices(8*count), little-endian.
func MarshalTable(t *Table) []byte {
	data := make([]byte, 32+4+8*len(t.Prices))
	copy(data[0:32], t.OwningCurve.Bytes())
	binary.LittleEndian.PutUint32(data[32:36], uint32(len(t.Prices)))
	for i, p := range t.Prices {
		binary.LittleEndian.PutUint64(data[36+8*i:], p)
	}
	return data
}

// UnmarshalTable parses a persisted lookup table record.
func UnmarshalTable(data []byte) (*Table, error) {
	if len(data) < 36 {
		return nil, fmt.Errorf("insufficient lookup table data length: %d", len(data))
	}
	count := binary.LittleEndian.Uint32(data[32:36])
	if count > MaxTableEntries {
		return nil, fmt.Errorf("%w: %d entries", ErrTableTooLarge, count)
	}
	if uint32(len(data)) < 36+8*count {
		return nil, fmt.Errorf("truncated lookup table: %d entries, %d bytes", count, len(data))
	}
	t := &Table{
		OwningCurve: solana.PublicKeyFromBytes(data[0:32]),
		Prices:      make([]uint64, count),
	}
	for i := range t.Prices {
		t.Prices[i] = binary.LittleEndian.Uint64(data[36+8*i:])
	}
	return t, nil
}
