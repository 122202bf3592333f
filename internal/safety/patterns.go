package safety

import (
	"regexp"

	"github.com/prudhvi1709/smart-cli/internal/types"
)

type pattern struct {
	re     *regexp.Regexp
	level  types.RiskLevel
	reason string
}

// python patterns are matched against generated source before it runs
var pythonPatterns = []pattern{
	{regexp.MustCompile(`(?m)\bshutil\.rmtree\s*\(`), types.RiskCritical, "recursively deletes a directory tree"},
	{regexp.MustCompile(`(?m)\bos\.system\s*\(\s*['"][^'"]*rm\s+-rf`), types.RiskCritical, "shells out to rm -rf"},
	{regexp.MustCompile(`(?m)\bsubprocess\.\w+\s*\(\s*\[?\s*['"]rm['"]`), types.RiskCritical, "spawns rm"},
	{regexp.MustCompile(`(?m)\bos\.remove\s*\(|\bos\.unlink\s*\(`), types.RiskDangerous, "deletes a file"},
	{regexp.MustCompile(`(?m)\bos\.rmdir\s*\(`), types.RiskDangerous, "removes a directory"},
	{regexp.MustCompile(`(?m)\beval\s*\(|\bexec\s*\(`), types.RiskDangerous, "evaluates dynamic code"},
	{regexp.MustCompile(`(?m)\b__import__\s*\(`), types.RiskDangerous, "imports a module dynamically"},
	{regexp.MustCompile(`(?m)\bos\.system\s*\(|\bsubprocess\.`), types.RiskCaution, "runs a subprocess"},
	{regexp.MustCompile(`(?m)\burllib\.request\b|\brequests\.(get|post|put|delete)\s*\(|\bhttp\.client\b`), types.RiskCaution, "makes a network request"},
	{regexp.MustCompile(`(?m)\bopen\s*\([^)]*['"][wa]\+?['"]`), types.RiskCaution, "writes to a file"},
	{regexp.MustCompile(`(?m)\bos\.chmod\s*\(|\bos\.chown\s*\(`), types.RiskCaution, "changes file permissions"},
	{regexp.MustCompile(`(?m)\bos\.environ\b`), types.RiskCaution, "reads environment variables"},
}

// shell command classification used by the syntax walker
var (
	criticalCommands = map[string]string{
		"mkfs":     "formats a filesystem",
		"dd":       "writes raw device data",
		"shutdown": "shuts the machine down",
		"reboot":   "reboots the machine",
	}
	dangerousCommands = map[string]string{
		"rm":     "deletes files",
		"rmdir":  "removes directories",
		"mv":     "moves or overwrites files",
		"chmod":  "changes permissions",
		"chown":  "changes ownership",
		"kill":   "signals processes",
		"pkill":  "kills processes by name",
		"sudo":   "escalates privileges",
		"eval":   "evaluates dynamic shell code",
		"source": "sources an external script",
	}
	wrapperCommands = map[string]bool{
		"xargs":   true,
		"sudo":    true,
		"env":     true,
		"nohup":   true,
		"timeout": true,
		"nice":    true,
	}
	cautionCommands = map[string]string{
		"curl":    "downloads from the network",
		"wget":    "downloads from the network",
		"ssh":     "opens a remote shell",
		"scp":     "copies files remotely",
		"git":     "modifies a repository",
		"tee":     "writes to files",
		"crontab": "edits scheduled jobs",
	}
)
