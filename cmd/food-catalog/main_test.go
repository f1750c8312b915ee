package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/bigkaa/foodcatalog/internal/config"
	"github.com/bigkaa/foodcatalog/internal/domain/model"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "import", "migrate", "version"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("команда %q не найдена: %v", name, err)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("флаг --config не зарегистрирован")
	}
}

func TestVersionCmd(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute ошибка: %v", err)
	}
	want := config.ServiceName + " " + config.Version
	if strings.TrimSpace(out.String()) != want {
		t.Errorf("вывод = %q, ожидался %q", out.String(), want)
	}
}

func TestImportCmd_ConfigError(t *testing.T) {
	t.Setenv("FC_DB_PASSWORD", "")
	root := newRootCmd()
	root.SetArgs([]string{"import"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "FC_DB_PASSWORD") {
		t.Errorf("ошибка = %v, ожидалась ошибка FC_DB_PASSWORD", err)
	}
}

func TestReportOutcome(t *testing.T) {
	var buf bytes.Buffer
	ok := &model.RunOutcome{Status: model.ImportSuccess, RecordsInserted: 5}
	if err := reportOutcome(&buf, ok); err != nil {
		t.Errorf("успешный запуск: ошибка = %v", err)
	}
	var parsed map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil || parsed["recordsInserted"] != float64(5) {
		t.Errorf("вывод = %q", buf.String())
	}

	failed := &model.RunOutcome{Status: model.ImportFailure, Detail: "Erro na importação: boom"}
	if err := reportOutcome(&bytes.Buffer{}, failed); err == nil || err.Error() != failed.Detail {
		t.Errorf("неудачный запуск: ошибка = %v", err)
	}
}
