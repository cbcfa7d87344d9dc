package zonedb

import (
	"testing"

	"github.com/go-acetime/acetime/zoneinfo"
)

func TestRegistry_SortedByZoneID(t *testing.T) {
	if len(Registry) != len(All) {
		t.Fatalf("len(Registry) = %d, want %d", len(Registry), len(All))
	}
	for i := 1; i < len(Registry); i++ {
		prev := zoneinfo.ZoneID(Registry[i-1].Name)
		cur := zoneinfo.ZoneID(Registry[i].Name)
		if prev >= cur {
			t.Errorf("Registry not sorted ascending by ZoneID at index %d: %s (%d) >= %s (%d)",
				i, Registry[i-1].Name, prev, Registry[i].Name, cur)
		}
	}
}

func TestRegistry_UniqueZoneIDs(t *testing.T) {
	seen := make(map[uint32]string)
	for _, z := range All {
		id := zoneinfo.ZoneID(z.Name)
		if other, ok := seen[id]; ok {
			t.Errorf("zone ID collision: %q and %q both hash to %d", z.Name, other, id)
		}
		seen[id] = z.Name
	}
}

func TestUSPacific_SharesLosAngelesEras(t *testing.T) {
	if len(USPacific.Eras) != len(AmericaLosAngeles.Eras) {
		t.Fatalf("USPacific has %d eras, want %d", len(USPacific.Eras), len(AmericaLosAngeles.Eras))
	}
	if &USPacific.Eras[0] != &AmericaLosAngeles.Eras[0] {
		t.Error("USPacific.Eras does not share backing array with AmericaLosAngeles.Eras")
	}
}

func TestEachZone_EndsWithFinalEra(t *testing.T) {
	for _, z := range All {
		last := z.Eras[len(z.Eras)-1]
		if !last.IsFinal() {
			t.Errorf("%s: last era is not final (UntilYear=%d)", z.Name, last.UntilYear)
		}
		for i, era := range z.Eras[:len(z.Eras)-1] {
			if era.IsFinal() {
				t.Errorf("%s: era %d is final but is not the last era", z.Name, i)
			}
		}
	}
}
