package action

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/mo"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	testNonce   = uint64(1700000000000)
	testExpires = testNonce + 10000
)

func perpAction() Action {
	return NewOrderAction(NewIocOrder(1, true, "100", "100", false))
}

func spotAction() Action {
	return NewOrderAction(NewIocOrder(10107, false, "24.123", "0.43", true))
}

func TestEncodeBytes(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		want   string
	}{
		{
			name:   "perp",
			action: perpAction(),
			want:   "83a474797065a56f72646572a66f72646572739186a16101a162c3a170a3313030a173a3313030a172c2a17481a56c696d697481a3746966a3496f63a867726f7570696e67a26e61",
		},
		{
			// asset 10107 needs the uint16 form (0xcd)
			name:   "spot",
			action: spotAction(),
			want:   "83a474797065a56f72646572a66f72646572739186a161cd277ba162c2a170a632342e313233a173a4302e3433a172c3a17481a56c696d697481a3746966a3496f63a867726f7570696e67a26e61",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.action)
			if err != nil {
				t.Fatalf("Encode error: %v", err)
			}
			if hex.EncodeToString(got) != tt.want {
				t.Errorf("Encode = %x, want %s", got, tt.want)
			}
		})
	}
}

func TestMarshalUsesCanonicalEncoder(t *testing.T) {
	want, err := Encode(spotAction())
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	got, err := msgpack.Marshal(spotAction())
	if err != nil {
		t.Fatalf("msgpack.Marshal error: %v", err)
	}
	if hex.EncodeToString(got) != hex.EncodeToString(want) {
		t.Errorf("msgpack.Marshal = %x, want %x", got, want)
	}
}

func TestActionHashVectors(t *testing.T) {
	vault := common.HexToAddress("0x1111111111111111111111111111111111111111")

	tests := []struct {
		name   string
		action Action
		vault  mo.Option[common.Address]
		want   string
	}{
		{"perp", perpAction(), mo.None[common.Address](), "0x33acf9d1eac1dddabc4a547ca6862f6c748607033d339ca08ae9d3440afb255a"},
		{"perp_vault", perpAction(), mo.Some(vault), "0xfb959015797369ce6d81f24e802cccf7bd86cfb4875be5b839b4d42a47489189"},
		{"spot", spotAction(), mo.None[common.Address](), "0x55337f8b8fa28963777650776506129510c5382c2e0d248794b22253d7386f5c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ActionHash(tt.action, testNonce, testExpires, tt.vault)
			if err != nil {
				t.Fatalf("ActionHash error: %v", err)
			}
			if got.Hex() != tt.want {
				t.Errorf("ActionHash = %s, want %s", got.Hex(), tt.want)
			}

			again, _ := ActionHash(tt.action, testNonce, testExpires, tt.vault)
			if again != got {
				t.Errorf("ActionHash not deterministic: %s vs %s", again.Hex(), got.Hex())
			}
		})
	}
}

func TestConnectionIDWithoutExpiry(t *testing.T) {
	a := NewOrderAction(Order{
		Asset:   1,
		IsBuy:   true,
		LimitPx: "100",
		Size:    "100",
		Type:    OrderType{Limit: Limit{Tif: TifGtc}},
	})

	withExpiry, err := ConnectionID(a, 0, mo.None[common.Address](), mo.Some(uint64(0)))
	if err != nil {
		t.Fatalf("ConnectionID error: %v", err)
	}
	without, err := ConnectionID(a, 0, mo.None[common.Address](), mo.None[uint64]())
	if err != nil {
		t.Fatalf("ConnectionID error: %v", err)
	}
	if withExpiry == without {
		t.Error("expiry block does not change the connection id")
	}
}

func TestActionHashFieldSensitivity(t *testing.T) {
	base, err := ActionHash(perpAction(), testNonce, testExpires, mo.None[common.Address]())
	if err != nil {
		t.Fatalf("ActionHash error: %v", err)
	}

	mutations := map[string]func(o *Order){
		"asset":       func(o *Order) { o.Asset = 2 },
		"side":        func(o *Order) { o.IsBuy = false },
		"price":       func(o *Order) { o.LimitPx = "101" },
		"size":        func(o *Order) { o.Size = "99" },
		"reduce_only": func(o *Order) { o.ReduceOnly = true },
		"tif":         func(o *Order) { o.Type.Limit.Tif = TifGtc },
	}
	for name, mutate := range mutations {
		o := perpAction().Orders[0]
		mutate(&o)
		got, err := ActionHash(NewOrderAction(o), testNonce, testExpires, mo.None[common.Address]())
		if err != nil {
			t.Fatalf("%s: ActionHash error: %v", name, err)
		}
		if got == base {
			t.Errorf("changing %s did not change the hash", name)
		}
	}

	if h, _ := ActionHash(perpAction(), testNonce+1, testExpires, mo.None[common.Address]()); h == base {
		t.Error("changing nonce did not change the hash")
	}
	if h, _ := ActionHash(perpAction(), testNonce, testExpires+1, mo.None[common.Address]()); h == base {
		t.Error("changing expiry did not change the hash")
	}
}

func TestEncodeRejectsInvalidActions(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		want   error
	}{
		{"empty", NewOrderAction(), ErrEmptyAction},
		{"wrong_type", Action{Type: "cancel", Orders: perpAction().Orders, Grouping: GroupingNA}, ErrInvalidOrder},
		{"no_grouping", Action{Type: TypeOrder, Orders: perpAction().Orders}, ErrInvalidOrder},
		{"bad_price", NewOrderAction(NewIocOrder(1, true, "abc", "1", false)), ErrInvalidOrder},
		{"trailing_zero", NewOrderAction(NewIocOrder(1, true, "1.50", "1", false)), ErrInvalidOrder},
		{"empty_size", NewOrderAction(NewIocOrder(1, true, "1", "", false)), ErrInvalidOrder},
		{"unknown_tif", NewOrderAction(Order{Asset: 1, LimitPx: "1", Size: "1", Type: OrderType{Limit: Limit{Tif: "Fok"}}}), ErrInvalidOrder},
		{"missing_tif", NewOrderAction(Order{Asset: 1, LimitPx: "1", Size: "1"}), ErrInvalidOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Encode(tt.action); !errors.Is(err, tt.want) {
				t.Errorf("Encode error = %v, want %v", err, tt.want)
			}
			if _, err := ActionHash(tt.action, 1, 2, mo.None[common.Address]()); !errors.Is(err, tt.want) {
				t.Errorf("ActionHash error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEncodeAcceptsEveryTif(t *testing.T) {
	for _, tif := range []string{TifIoc, TifGtc, TifAlo} {
		o := NewIocOrder(1, true, "1", "1", false)
		o.Type.Limit.Tif = tif
		if _, err := Encode(NewOrderAction(o)); err != nil {
			t.Errorf("Encode with tif %s: %v", tif, err)
		}
	}
}

func TestOrderIsSpot(t *testing.T) {
	if perpAction().Orders[0].IsSpot() {
		t.Error("asset 1 reported as spot")
	}
	if !spotAction().Orders[0].IsSpot() {
		t.Error("asset 10107 not reported as spot")
	}
}
