package scale

import (
	"fmt"
	"os"

	restclient "k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// LoadKubeConfig builds a rest config from the given kubeconfig path. The
// path is required and must reference an existing file; this is checked
// before any client is constructed so a bad path aborts the run up front.
func LoadKubeConfig(path string) (*restclient.Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("kubeconfig file not found: %s", path)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("kubeconfig path is a directory: %s", path)
	}

	return clientcmd.BuildConfigFromFlags("", path)
}
