package pending

import (
	"context"
	"slices"
	"testing"

	"github.com/erazemk/lostfound/internal/apitest"
	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/client"
	"github.com/erazemk/lostfound/internal/model"
)

func TestWithAPIClient(t *testing.T) {
	srv := apitest.NewServer(t)
	owner := model.User{ID: 1, Name: "Ana"}
	finder := model.User{ID: 2, Name: "Bor"}

	umbrella := srv.AddItem(model.Item{Name: "Umbrella", PostedByID: owner.ID, Location: "Cafeteria"})
	laptop := srv.AddItem(model.Item{Name: "Laptop", PostedByID: owner.ID})
	first := srv.AddReport(model.FoundReport{ItemID: umbrella.ID, FinderID: finder.ID, FinderConfirmed: true})
	second := srv.AddReport(model.FoundReport{ItemID: laptop.ID, FinderID: finder.ID, FinderConfirmed: true})

	// The laptop listing was removed after the report was filed.
	srv.RemoveItem(laptop.ID)

	c := client.New(srv.URL, auth.NewSession(srv.Token(t, owner), nil))
	vm := New(c)
	defer vm.Close()

	if err := vm.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	entries := vm.Entries()
	if !slices.Equal(entryIDs(entries), []int64{first.ID, second.ID}) {
		t.Fatalf("entries = %v", entryIDs(entries))
	}
	if entries[0].Item.Location != "Cafeteria" || !entries[0].Item.Live {
		t.Errorf("entry not enriched: %+v", entries[0].Item)
	}
	if entries[1].Item.Name != "Laptop" || entries[1].Item.Live {
		t.Errorf("expected title fallback, got %+v", entries[1].Item)
	}

	if err := vm.Confirm(context.Background(), first.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if got := entryIDs(vm.Entries()); !slices.Equal(got, []int64{second.ID}) {
		t.Errorf("entries = %v after confirm", got)
	}
	if item, _ := srv.Item(umbrella.ID); item.Status != model.StatusFoundConfirmed {
		t.Errorf("item status = %s, want FOUND_CONFIRMED", item.Status)
	}

	// Reloading agrees with the pruned local list.
	if err := vm.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := entryIDs(vm.Entries()); !slices.Equal(got, []int64{second.ID}) {
		t.Errorf("entries = %v after reload", got)
	}
}
