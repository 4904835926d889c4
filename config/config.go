package config

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ochinchina/go-ini"
	log "github.com/sirupsen/logrus"
)

// Entry is one section of the matrix configuration file
type Entry struct {
	ConfigDir string
	Name      string
	keyValues map[string]string
}

// IsTestEnv returns true if this is a testenv section
func (c *Entry) IsTestEnv() bool {
	return strings.HasPrefix(c.Name, "testenv:")
}

// GetTestEnvName returns the environment name
func (c *Entry) GetTestEnvName() string {
	if strings.HasPrefix(c.Name, "testenv:") {
		return c.Name[len("testenv:"):]
	}
	return ""
}

// String dumps the section as a string
func (c *Entry) String() string {
	buf := bytes.NewBuffer(make([]byte, 0))
	for k, v := range c.keyValues {
		fmt.Fprintf(buf, "%s=%s\n", k, v)
	}
	return buf.String()
}

// HasParameter checks if key is present in the section
func (c *Entry) HasParameter(key string) bool {
	_, ok := c.keyValues[key]
	return ok
}

// GetString returns value of the key as a string
func (c *Entry) GetString(key string, defValue string) string {
	s, ok := c.keyValues[key]
	if ok {
		return s
	}
	return defValue
}

// GetBool gets value of key as bool
func (c *Entry) GetBool(key string, defValue bool) bool {
	value, ok := c.keyValues[key]
	if ok {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defValue
}

func toInt(s string, factor int, defValue int) int {
	i, err := strconv.Atoi(s)
	if err == nil {
		return i * factor
	}
	return defValue
}

// GetInt gets value of the key as int
func (c *Entry) GetInt(key string, defValue int) int {
	value, ok := c.keyValues[key]
	if ok {
		return toInt(value, 1, defValue)
	}
	return defValue
}

// GetStringArray gets string value and splits it on "sep" to a slice
func (c *Entry) GetStringArray(key string, sep string) []string {
	s, ok := c.keyValues[key]
	result := make([]string, 0)
	if ok {
		for _, e := range strings.Split(s, sep) {
			e = strings.TrimSpace(e)
			if len(e) > 0 {
				result = append(result, e)
			}
		}
	}
	return result
}

// GetLines returns a multi-line value as a slice of lines. Comment lines
// and empty lines are dropped, a line ending in a backslash continues on
// the next line.
func (c *Entry) GetLines(key string) []string {
	value, ok := c.keyValues[key]
	result := make([]string, 0)
	if !ok {
		return result
	}
	cont := ""
	for _, line := range strings.Split(value, "\n") {
		line = strings.TrimSpace(line)
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasSuffix(line, "\\") {
			cont += strings.TrimSuffix(line, "\\") + " "
			continue
		}
		result = append(result, cont+line)
		cont = ""
	}
	if len(cont) > 0 {
		result = append(result, strings.TrimSpace(cont))
	}
	return result
}

// GetKeyValues parses a multi-line value in NAME=VALUE form, one pair
// per line. Used for the setenv key.
func (c *Entry) GetKeyValues(key string) map[string]string {
	result := make(map[string]string)
	for _, line := range c.GetLines(key) {
		pos := strings.Index(line, "=")
		if pos == -1 {
			log.WithFields(log.Fields{"section": c.Name, "key": key, "line": line}).Warn("ignore malformed NAME=VALUE line")
			continue
		}
		k := strings.TrimSpace(line[0:pos])
		v := strings.TrimSpace(line[pos+1:])
		if len(k) > 0 {
			result[k] = v
		}
	}
	return result
}

// Config is the in-memory representation of the matrix configuration file
type Config struct {
	configFile string
	// mapping between the section name and configuration entry
	entries map[string]*Entry

	// testenv section names in file order
	testEnvOrder []string
}

// NewEntry creates a configuration entry
func NewEntry(configDir string) *Entry {
	return &Entry{configDir, "", make(map[string]string)}
}

// NewConfig creates a Config object
func NewConfig(configFile string) *Config {
	return &Config{configFile: configFile, entries: make(map[string]*Entry)}
}

// create a new entry or return the already-exist entry
func (c *Config) createEntry(name string, configDir string) *Entry {
	entry, ok := c.entries[name]
	if !ok {
		entry = NewEntry(configDir)
		entry.Name = name
		c.entries[name] = entry
	}
	return entry
}

// Load the configuration and return the names of the loaded environments
func (c *Config) Load() ([]string, error) {
	myini := ini.NewIni()
	log.WithFields(log.Fields{"file": c.configFile}).Info("load configuration from file")
	myini.LoadFile(c.configFile)

	if len(myini.Sections()) == 0 {
		return nil, fmt.Errorf("no section found in file %s", c.configFile)
	}
	c.entries = make(map[string]*Entry)
	c.testEnvOrder = make([]string, 0)
	c.applyTestEnvDefaults(myini)
	c.parse(myini)
	c.createImplicitTestEnvs()
	return c.GetTestEnvNames(), nil
}

// copy every key of the [testenv] base section into the [testenv:x]
// sections that do not set it themselves
func (c *Config) applyTestEnvDefaults(cfg *ini.Ini) {
	defaultSection, err := cfg.GetSection("testenv")
	if err != nil {
		return
	}
	for _, section := range cfg.Sections() {
		if !strings.HasPrefix(section.Name, "testenv:") {
			continue
		}
		for _, key := range defaultSection.Keys() {
			if !section.HasKey(key.Name()) {
				section.Add(key.Name(), key.ValueWithDefault(""))
			}
		}
	}
}

func (c *Config) parse(cfg *ini.Ini) {
	for _, section := range cfg.Sections() {
		entry := c.createEntry(section.Name, c.GetConfigFileDir())
		entry.parse(section)
		if entry.IsTestEnv() {
			c.testEnvOrder = append(c.testEnvOrder, entry.GetTestEnvName())
		}
	}
}

// environments named by envlist without an own [testenv:x] section run
// with the base [testenv] settings
func (c *Config) createImplicitTestEnvs() {
	base, hasBase := c.entries["testenv"]
	global, ok := c.GetGlobal()
	if !ok || !global.HasParameter("envlist") {
		return
	}
	for _, name := range ParseEnvList(global.GetString("envlist", "")) {
		sectionName := "testenv:" + name
		if _, ok := c.entries[sectionName]; ok {
			continue
		}
		entry := c.createEntry(sectionName, c.GetConfigFileDir())
		if hasBase {
			for k, v := range base.keyValues {
				entry.keyValues[k] = v
			}
		}
		c.testEnvOrder = append(c.testEnvOrder, name)
	}
}

// GetConfigFileDir returns the directory of the configuration file
func (c *Config) GetConfigFileDir() string {
	dir, err := filepath.Abs(filepath.Dir(c.configFile))
	if err != nil {
		return filepath.Dir(c.configFile)
	}
	return dir
}

// GetConfigFile returns the path of the configuration file
func (c *Config) GetConfigFile() string {
	return c.configFile
}

// GetGlobal returns the [gotox] section
func (c *Config) GetGlobal() (*Entry, bool) {
	entry, ok := c.entries["gotox"]
	return entry, ok
}

// GetTestEnv returns the configuration entry of one environment or nil
func (c *Config) GetTestEnv(name string) *Entry {
	entry, ok := c.entries["testenv:"+name]
	if ok {
		return entry
	}
	return nil
}

// GetTestEnvNames returns the selected environment names: the expanded
// envlist of the [gotox] section, or every [testenv:x] section in file
// order when no envlist is declared
func (c *Config) GetTestEnvNames() []string {
	if global, ok := c.GetGlobal(); ok && global.HasParameter("envlist") {
		names := make([]string, 0)
		for _, name := range ParseEnvList(global.GetString("envlist", "")) {
			if c.GetTestEnv(name) != nil {
				names = append(names, name)
			}
		}
		return names
	}
	return append([]string(nil), c.testEnvOrder...)
}

// GetSectionValue returns the raw value of key in an arbitrary section,
// used by the {[section]key} substitution
func (c *Config) GetSectionValue(section string, key string) (string, error) {
	entry, ok := c.entries[section]
	if !ok {
		return "", fmt.Errorf("no section %s in configuration", section)
	}
	value, ok := entry.keyValues[key]
	if !ok {
		return "", fmt.Errorf("no key %s in section %s", key, section)
	}
	return value, nil
}

// GetEntries returns configuration entries by filter
func (c *Config) GetEntries(filterFunc func(entry *Entry) bool) []*Entry {
	result := make([]*Entry, 0)
	for _, entry := range c.entries {
		if filterFunc(entry) {
			result = append(result, entry)
		}
	}
	return result
}

func (c *Entry) parse(section *ini.Section) {
	c.Name = section.Name
	for _, key := range section.Keys() {
		c.keyValues[key.Name()] = strings.TrimSpace(key.ValueWithDefault(""))
	}
}

// String converts the configuration to a string
func (c *Config) String() string {
	buf := bytes.NewBuffer(make([]byte, 0))
	for _, v := range c.entries {
		fmt.Fprintf(buf, "[%s]\n", v.Name)
		fmt.Fprintf(buf, "%s\n", v.String())
	}
	return buf.String()
}
