package cluster

import (
	"reflect"
	"testing"
)

func TestDetectRoleMaster(t *testing.T) {
	role, _, _, rest := DetectRole([]string{"--config", "prod.yaml"})
	if role != RoleMaster {
		t.Fatalf("role = %v, want RoleMaster", role)
	}
	if !reflect.DeepEqual(rest, []string{"--config", "prod.yaml"}) {
		t.Fatalf("rest = %v", rest)
	}
}

func TestDetectRoleWorker(t *testing.T) {
	argv := []string{"--config", "prod.yaml", sentinelFlag, "2", "9090"}
	role, id, port, rest := DetectRole(argv)
	if role != RoleWorker {
		t.Fatalf("role = %v, want RoleWorker", role)
	}
	if id != 2 || port != 9090 {
		t.Fatalf("id/port = %d/%d, want 2/9090", id, port)
	}
	if !reflect.DeepEqual(rest, []string{"--config", "prod.yaml"}) {
		t.Fatalf("rest = %v, want sentinel stripped", rest)
	}
}

func TestBuildWorkerArgvStripsAndReappendsSentinel(t *testing.T) {
	masterArgv := []string{"--config", "prod.yaml"}
	argv := buildWorkerArgv("/usr/bin/ecewo", masterArgv, 3, 8080)
	want := []string{"/usr/bin/ecewo", "--config", "prod.yaml", sentinelFlag, "3", "8080"}
	if !reflect.DeepEqual(argv, want) {
		t.Fatalf("buildWorkerArgv = %v, want %v", argv, want)
	}

	// Idempotent restart: detecting the role from a worker's own argv and
	// rebuilding it must not accumulate sentinel triples.
	_, id, port, rest := DetectRole(argv[1:])
	restarted := buildWorkerArgv("/usr/bin/ecewo", rest, id, port)
	if !reflect.DeepEqual(restarted, argv) {
		t.Fatalf("restarted argv = %v, want %v", restarted, argv)
	}
}
