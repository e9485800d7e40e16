package sysinfo

// MockProvider is a mock implementation of Provider for testing
type MockProvider struct {
	LineEnding string
	CPUList    []CPU
	CPUErr     error
	Home       string
	User       string
	UserErr    error
	Machine    string
}

// NewMockProvider creates a MockProvider describing a small linux box
func NewMockProvider() *MockProvider {
	return &MockProvider{
		LineEnding: "\n",
		CPUList: []CPU{
			{Model: "Test CPU", MHz: 2400},
			{Model: "Test CPU", MHz: 2400},
		},
		Home:    "/home/tester",
		User:    "tester",
		Machine: "amd64",
	}
}

func (m *MockProvider) EOL() string { return m.LineEnding }

func (m *MockProvider) CPUs() ([]CPU, error) {
	if m.CPUErr != nil {
		return nil, m.CPUErr
	}
	return m.CPUList, nil
}

func (m *MockProvider) HomeDir() (string, error) { return m.Home, nil }

func (m *MockProvider) Username() (string, error) {
	if m.UserErr != nil {
		return "", m.UserErr
	}
	return m.User, nil
}

func (m *MockProvider) Arch() string { return m.Machine }
