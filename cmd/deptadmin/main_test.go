package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benprew/deptadmin"
	http "github.com/benprew/deptadmin/http"
	"github.com/benprew/deptadmin/remote"
	"github.com/benprew/deptadmin/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(NewMain())
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestHashKeyCmd(t *testing.T) {
	out, err := runCmd(t, "hashkey", "s3cret")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}

func TestListCmd(t *testing.T) {
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	defer db.Close()

	s := http.NewServer()
	s.DepartmentStore = sqlite.NewDepartmentService(db)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	c := remote.NewClient(ts.URL + "/api")
	for _, d := range []deptadmin.Draft{{Name: "Sales", Code: "SAL"}, {Name: "Legal", Code: "LEG"}} {
		_, err := c.CreateDepartment(context.Background(), d)
		require.NoError(t, err)
	}

	path := writeConfig(t, "config.yaml", "web:\n  remote_url: "+ts.URL+"/api\n")

	out, err := runCmd(t, "--config", path, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ID  NAME   CODE")
	assert.Contains(t, out, "1   Sales  SAL")
	assert.Contains(t, out, "2   Legal  LEG")

	out, err = runCmd(t, "--config", path, "list", "--name", "leg")
	require.NoError(t, err)
	assert.NotContains(t, out, "Sales")
	assert.Contains(t, out, "Legal")
}

func TestListCmdRemoteDown(t *testing.T) {
	ts := httptest.NewServer(nil)
	ts.Close()
	path := writeConfig(t, "config.json", `{
		// closed server
		"web": {"remote_url": "`+ts.URL+`/api", "timeout": "1s"},
	}`)

	_, err := runCmd(t, "--config", path, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), deptadmin.MsgListFailed)
}

func TestLoadConfigMissing(t *testing.T) {
	m := NewMain()
	m.ConfigPath = filepath.Join(t.TempDir(), "missing.json")
	assert.EqualError(t, m.LoadConfig(), "config file not found: "+m.ConfigPath)
}
