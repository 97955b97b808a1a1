package db

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"Gin_postgres_redis_inventory_tool/models"
)

// 需要真实 Postgres（条件 UPDATE / 行锁的语义没法用内存库代替）。
// 设置 TEST_DATABASE_URL 后运行，否则整包跳过。
func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database tests")
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	for _, tbl := range []string{
		models.UsageLogTable, "inv_adjustment_log", models.RequestTable,
		models.ItemTable, models.UserTable,
	} {
		if err := gdb.Exec("TRUNCATE " + tbl + " CASCADE").Error; err != nil {
			t.Fatalf("truncate %s: %v", tbl, err)
		}
	}
	return NewRepo(gdb)
}

func seedItem(t *testing.T, r *Repo, quantity, minStock int) *models.Item {
	t.Helper()
	it := &models.Item{
		ID:            uuid.NewString(),
		Name:          "beaker",
		Category:      "lab_equipment",
		Department:    "lab",
		Quantity:      quantity,
		MinStockLevel: minStock,
		Unit:          "pieces",
		IsActive:      true,
	}
	if err := r.CreateItem(context.Background(), it); err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return it
}

func seedUser(t *testing.T, r *Repo, role string) *models.User {
	t.Helper()
	u := &models.User{
		ID:           uuid.NewString(),
		Username:     uuid.NewString() + "@example.com",
		DisplayName:  "tester",
		PasswordHash: []byte("x"),
		Role:         role,
		Department:   "lab",
	}
	if err := r.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedRequest(t *testing.T, r *Repo, itemID, userID string, quantity int) *models.Request {
	t.Helper()
	req, err := r.CreateRequest(context.Background(), CreateRequestInput{
		ItemID:   itemID,
		UserID:   userID,
		Quantity: quantity,
		Reason:   "experiment",
	})
	if err != nil {
		t.Fatalf("seed request: %v", err)
	}
	return req
}

func TestAdjustQuantity(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	it := seedItem(t, r, 10, 2)

	got, err := r.AdjustQuantity(ctx, it.ID, -4)
	if err != nil {
		t.Fatalf("AdjustQuantity: %v", err)
	}
	if got.Quantity != 6 {
		t.Errorf("quantity = %d, want 6", got.Quantity)
	}

	// 扣穿必须整体失败，库存不动
	if _, err := r.AdjustQuantity(ctx, it.ID, -7); !errors.Is(err, ErrInsufficientStock) {
		t.Errorf("expected ErrInsufficientStock, got %v", err)
	}
	got, _ = r.FindItemByID(ctx, it.ID)
	if got.Quantity != 6 {
		t.Errorf("quantity after failed adjust = %d, want 6", got.Quantity)
	}

	// 扣到 0 是合法的
	if _, err := r.AdjustQuantity(ctx, it.ID, -6); err != nil {
		t.Errorf("adjust to zero: %v", err)
	}

	if _, err := r.AdjustQuantity(ctx, uuid.NewString(), -1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAdjustQuantityInactiveItem(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	it := seedItem(t, r, 10, 2)
	if err := r.SoftDeleteItem(ctx, it.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if _, err := r.AdjustQuantity(ctx, it.ID, -1); !errors.Is(err, ErrNotFound) {
		t.Errorf("inactive item: expected ErrNotFound, got %v", err)
	}
}

func TestApproveDeclineComplete(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	it := seedItem(t, r, 10, 2)
	staff := seedUser(t, r, models.RoleStaff)
	admin := seedUser(t, r, models.RoleAdmin)

	req := seedRequest(t, r, it.ID, staff.ID, 3)
	if req.Status != models.StatusPending {
		t.Fatalf("new request status = %q", req.Status)
	}

	// pending 状态不能 complete
	if _, err := r.CompleteRequest(ctx, req.ID); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("complete pending: expected ErrInvalidStateTransition, got %v", err)
	}

	approved, err := r.ApproveRequest(ctx, req.ID, admin.ID, "ok")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != models.StatusApproved {
		t.Errorf("status = %q, want approved", approved.Status)
	}
	if approved.DecidedBy == nil || *approved.DecidedBy != admin.ID {
		t.Errorf("decidedBy = %v", approved.DecidedBy)
	}
	if approved.DecidedAt == nil {
		t.Error("decidedAt not set")
	}

	got, _ := r.FindItemByID(ctx, it.ID)
	if got.Quantity != 7 {
		t.Errorf("quantity after approval = %d, want 7", got.Quantity)
	}

	// 重试已审批的单子：拒绝且库存不再动
	if _, err := r.ApproveRequest(ctx, req.ID, admin.ID, "again"); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("re-approve: expected ErrInvalidStateTransition, got %v", err)
	}
	if _, err := r.DeclineRequest(ctx, req.ID, admin.ID, "no"); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("decline approved: expected ErrInvalidStateTransition, got %v", err)
	}
	got, _ = r.FindItemByID(ctx, it.ID)
	if got.Quantity != 7 {
		t.Errorf("quantity after retries = %d, want 7", got.Quantity)
	}

	// complete 写状态 + 补用量记录，库存不变
	done, err := r.CompleteRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != models.StatusCompleted {
		t.Errorf("status = %q, want completed", done.Status)
	}
	got, _ = r.FindItemByID(ctx, it.ID)
	if got.Quantity != 7 {
		t.Errorf("quantity after complete = %d, want 7", got.Quantity)
	}

	usage, err := r.ListUsage(ctx, UsageQuery{ItemID: it.ID})
	if err != nil {
		t.Fatalf("list usage: %v", err)
	}
	if usage.Total != 1 {
		t.Fatalf("usage entries = %d, want 1", usage.Total)
	}
	entry := usage.Entries[0]
	if entry.RequestID == nil || *entry.RequestID != req.ID {
		t.Errorf("usage.requestId = %v, want %s", entry.RequestID, req.ID)
	}
	if entry.QuantityUsed != 3 {
		t.Errorf("usage.quantityUsed = %d, want 3", entry.QuantityUsed)
	}

	// completed 是终态
	if _, err := r.CompleteRequest(ctx, req.ID); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("re-complete: expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestDeclineLeavesStockAlone(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	it := seedItem(t, r, 10, 2)
	staff := seedUser(t, r, models.RoleStaff)
	admin := seedUser(t, r, models.RoleAdmin)

	req := seedRequest(t, r, it.ID, staff.ID, 5)
	declined, err := r.DeclineRequest(ctx, req.ID, admin.ID, "not now")
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if declined.Status != models.StatusDeclined {
		t.Errorf("status = %q, want declined", declined.Status)
	}
	got, _ := r.FindItemByID(ctx, it.ID)
	if got.Quantity != 10 {
		t.Errorf("quantity = %d, want 10", got.Quantity)
	}
}

// 两个并发审批各要 6 件，库存 10：必须恰好一单成功（剩 4），
// 输家拿 ErrInsufficientStock 且保持 pending。
func TestConcurrentApprovalsDoNotOversell(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	it := seedItem(t, r, 10, 2)
	staff := seedUser(t, r, models.RoleStaff)
	admin := seedUser(t, r, models.RoleAdmin)

	reqA := seedRequest(t, r, it.ID, staff.ID, 6)
	reqB := seedRequest(t, r, it.ID, staff.ID, 6)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{reqA.ID, reqB.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = r.ApproveRequest(ctx, id, admin.ID, "")
		}(i, id)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || insufficient != 1 {
		t.Fatalf("outcomes: ok=%d insufficient=%d, want 1/1", ok, insufficient)
	}

	got, _ := r.FindItemByID(ctx, it.ID)
	if got.Quantity != 4 {
		t.Errorf("final quantity = %d, want 4", got.Quantity)
	}

	// 输家保持 pending，可以重试或被驳回
	var pending int
	for _, id := range []string{reqA.ID, reqB.ID} {
		req, err := r.FindRequestByID(ctx, id)
		if err != nil {
			t.Fatalf("find request: %v", err)
		}
		if req.Status == models.StatusPending {
			pending++
		}
	}
	if pending != 1 {
		t.Errorf("pending requests = %d, want 1", pending)
	}
}

// 同一单被两个管理员同时审：只有一个赢家，库存只扣一次
func TestConcurrentDecisionsOnOneRequest(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	it := seedItem(t, r, 10, 2)
	staff := seedUser(t, r, models.RoleStaff)
	admin := seedUser(t, r, models.RoleAdmin)

	req := seedRequest(t, r, it.ID, staff.ID, 4)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = r.ApproveRequest(ctx, req.ID, admin.ID, "")
		}(i)
	}
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInvalidStateTransition):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || rejected != 1 {
		t.Fatalf("outcomes: ok=%d rejected=%d, want 1/1", ok, rejected)
	}

	got, _ := r.FindItemByID(ctx, it.ID)
	if got.Quantity != 6 {
		t.Errorf("quantity = %d, want 6 (decremented exactly once)", got.Quantity)
	}
}

func TestCreateRequestSoftStockCheck(t *testing.T) {
	r := newTestRepo(t)
	it := seedItem(t, r, 3, 1)
	staff := seedUser(t, r, models.RoleStaff)

	if _, err := r.CreateRequest(context.Background(), CreateRequestInput{
		ItemID:   it.ID,
		UserID:   staff.ID,
		Quantity: 4,
		Reason:   "too much",
	}); !errors.Is(err, ErrQuantityExceedsStock) {
		t.Errorf("expected ErrQuantityExceedsStock at creation, got %v", err)
	}
}

func TestAdjustQuantityAudited(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	it := seedItem(t, r, 2, 5)
	admin := seedUser(t, r, models.RoleAdmin)

	reason := "restock delivery"
	got, err := r.AdjustQuantityAudited(ctx, it.ID, 20, admin.ID, admin.Username, &reason)
	if err != nil {
		t.Fatalf("audited adjust: %v", err)
	}
	if got.Quantity != 22 {
		t.Errorf("quantity = %d, want 22", got.Quantity)
	}

	var n int64
	if err := r.DB.Table("inv_adjustment_log").Where("item_id = ?", it.ID).Count(&n).Error; err != nil {
		t.Fatalf("count audit rows: %v", err)
	}
	if n != 1 {
		t.Errorf("audit rows = %d, want 1", n)
	}
}
