package main

import (
	"strings"
	"testing"
)

func TestAdminAddRemoveList(t *testing.T) {
	cfgPath := writeTestConfig(t)
	if _, err := runCmd(t, "migrate", "--config", cfgPath); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	out, err := runCmd(t, "admin", "add", "42", "--config", cfgPath)
	if err != nil {
		t.Fatalf("admin add: %v", err)
	}
	if !strings.Contains(out, "Added admin 42") {
		t.Errorf("add output = %s", out)
	}

	// Duplicate add is rejected.
	if _, err := runCmd(t, "admin", "add", "42", "--config", cfgPath); err == nil {
		t.Fatal("expected error for duplicate admin")
	}

	out, err = runCmd(t, "admin", "list", "--config", cfgPath)
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if !strings.Contains(out, "42") {
		t.Errorf("list missing added admin: %s", out)
	}
	if !strings.Contains(out, "Main admins") || !strings.Contains(out, "1") {
		t.Errorf("list missing main admin: %s", out)
	}

	out, err = runCmd(t, "admin", "remove", "42", "--config", cfgPath)
	if err != nil {
		t.Fatalf("admin remove: %v", err)
	}
	if !strings.Contains(out, "Removed admin 42") {
		t.Errorf("remove output = %s", out)
	}

	if _, err := runCmd(t, "admin", "remove", "42", "--config", cfgPath); err == nil {
		t.Fatal("expected error removing unknown admin")
	}
}

func TestAdminAdd_MainAdminRejected(t *testing.T) {
	cfgPath := writeTestConfig(t)
	if _, err := runCmd(t, "migrate", "--config", cfgPath); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	_, err := runCmd(t, "admin", "add", "1", "--config", cfgPath)
	if err == nil {
		t.Fatal("expected error adding a main admin")
	}
	if !strings.Contains(err.Error(), "main admin") {
		t.Errorf("error = %v", err)
	}
}

func TestAdminRemove_MainAdminRejected(t *testing.T) {
	cfgPath := writeTestConfig(t)
	if _, err := runCmd(t, "migrate", "--config", cfgPath); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	_, err := runCmd(t, "admin", "remove", "1", "--config", cfgPath)
	if err == nil {
		t.Fatal("expected error removing a main admin")
	}
	if !strings.Contains(err.Error(), "config file") {
		t.Errorf("error = %v", err)
	}
}

func TestAdminAdd_InvalidID(t *testing.T) {
	cfgPath := writeTestConfig(t)

	for _, raw := range []string{"abc", "0", "-5"} {
		if _, err := runCmd(t, "admin", "add", raw, "--config", cfgPath); err == nil {
			t.Errorf("expected error for id %q", raw)
		}
	}
}
