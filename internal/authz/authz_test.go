package authz

import (
	"errors"
	"testing"

	"github.com/meanun/linkshelf/internal/models"
	"github.com/meanun/linkshelf/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type mainAdmins []int64

func (m mainAdmins) IsMainAdmin(id int64) bool {
	for _, a := range m {
		if a == id {
			return true
		}
	}
	return false
}

func TestAuthorize_Matrix(t *testing.T) {
	main := Actor{UserID: 1, Role: RoleMain}
	owner := Actor{UserID: 2, Role: RoleAdded}
	other := Actor{UserID: 3, Role: RoleAdded}
	user := Actor{UserID: 4, Role: RoleNone}
	ownedBy2 := &Record{CreatedBy: 2}

	tests := []struct {
		name   string
		actor  Actor
		action Action
		target *Record
		allow  bool
	}{
		{"main updates any", main, ActionUpdate, ownedBy2, true},
		{"main deletes any", main, ActionDelete, ownedBy2, true},
		{"main manages admins", main, ActionManageAdmins, nil, true},
		{"main creates", main, ActionCreate, nil, true},

		{"owner updates own", owner, ActionUpdate, ownedBy2, true},
		{"owner deletes own", owner, ActionDelete, ownedBy2, true},
		{"added creates", owner, ActionCreate, nil, true},
		{"added cannot manage admins", owner, ActionManageAdmins, nil, false},

		{"other added cannot update", other, ActionUpdate, ownedBy2, false},
		{"other added cannot delete", other, ActionDelete, ownedBy2, false},

		{"regular user reads", user, ActionRead, nil, true},
		{"regular user cannot create", user, ActionCreate, nil, false},
		{"regular user cannot delete", user, ActionDelete, ownedBy2, false},

		{"added update without target denied", other, ActionUpdate, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.actor, tt.action, tt.target)
			if tt.allow && err != nil {
				t.Errorf("Authorize = %v, want allow", err)
			}
			if !tt.allow && !errors.Is(err, ErrPermissionDenied) {
				t.Errorf("Authorize = %v, want ErrPermissionDenied", err)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Admin{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := store.AddAdmin(db, 200); err != nil {
		t.Fatalf("add admin: %v", err)
	}

	cfg := mainAdmins{100}

	tests := []struct {
		userID int64
		want   Role
	}{
		{100, RoleMain},
		{200, RoleAdded},
		{300, RoleNone},
	}
	for _, tt := range tests {
		actor, err := Resolve(db, cfg, tt.userID)
		if err != nil {
			t.Fatalf("Resolve(%d): %v", tt.userID, err)
		}
		if actor.Role != tt.want {
			t.Errorf("Resolve(%d).Role = %d, want %d", tt.userID, actor.Role, tt.want)
		}
	}
}

func TestResolve_MainWinsOverAdded(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Admin{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// A main admin accidentally added as a runtime admin still resolves main.
	store.AddAdmin(db, 100)

	actor, err := Resolve(db, mainAdmins{100}, 100)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if actor.Role != RoleMain {
		t.Errorf("Role = %d, want RoleMain", actor.Role)
	}
}

func TestIsAdmin(t *testing.T) {
	if !(Actor{Role: RoleMain}).IsAdmin() || !(Actor{Role: RoleAdded}).IsAdmin() {
		t.Error("admin roles should report IsAdmin")
	}
	if (Actor{Role: RoleNone}).IsAdmin() {
		t.Error("RoleNone should not report IsAdmin")
	}
}
