package models

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusDeclined, true},
		{StatusPending, StatusCompleted, false},
		{StatusApproved, StatusCompleted, true},
		{StatusApproved, StatusDeclined, false},
		{StatusApproved, StatusPending, false},
		{StatusDeclined, StatusCompleted, false},
		{StatusDeclined, StatusPending, false},
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusApproved, false},
		// 重复迁移必须被拒绝，不能二次生效
		{StatusApproved, StatusApproved, false},
		{StatusDeclined, StatusDeclined, false},
	}

	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	if terminal(StatusPending) {
		t.Error("pending must not be terminal")
	}
	if terminal(StatusApproved) {
		t.Error("approved must not be terminal")
	}
	if !terminal(StatusDeclined) {
		t.Error("declined must be terminal")
	}
	if !terminal(StatusCompleted) {
		t.Error("completed must be terminal")
	}
}

func TestStockStatus(t *testing.T) {
	cases := []struct {
		quantity, min int
		want          string
	}{
		{0, 5, "out_of_stock"},
		{5, 5, "low_stock"},
		{1, 5, "low_stock"},
		{6, 5, "in_stock"},
	}
	for _, c := range cases {
		it := &Item{Quantity: c.quantity, MinStockLevel: c.min}
		if got := it.StockStatus(); got != c.want {
			t.Errorf("StockStatus(q=%d, min=%d) = %q, want %q", c.quantity, c.min, got, c.want)
		}
	}
}

func TestValidators(t *testing.T) {
	if !ValidCategory("lab_equipment") || ValidCategory("widgets") {
		t.Error("ValidCategory misclassified")
	}
	if !ValidDepartment("library") || ValidDepartment("warehouse") {
		t.Error("ValidDepartment misclassified")
	}
	if !ValidPriority("urgent") || ValidPriority("asap") {
		t.Error("ValidPriority misclassified")
	}
	if !ValidRole("admin") || ValidRole("root") {
		t.Error("ValidRole misclassified")
	}
}
