package scale

import (
	"context"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
)

// ClusterClient is the control-plane capability the core depends on. The
// production implementation wraps client-go; tests substitute fakes.
type ClusterClient interface {
	ListDeployments(ctx context.Context, namespace string) ([]Deployment, error)
	GetReplicas(ctx context.Context, namespace, name string) (int32, error)
	ScaleDeployment(ctx context.Context, namespace, name string, replicas int32) error
}

func NewKubeClient(clientset kubernetes.Interface) ClusterClient {
	return &kubeClient{clientset: clientset}
}

type kubeClient struct {
	clientset kubernetes.Interface
}

func (c *kubeClient) ListDeployments(ctx context.Context, namespace string) ([]Deployment, error) {
	list, err := c.clientset.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}

	deploys := make([]Deployment, 0, len(list.Items))
	for _, item := range list.Items {
		deploys = append(deploys, Deployment{
			Namespace: item.Namespace,
			Name:      item.Name,
			Replicas:  replicasOf(item.Spec.Replicas),
		})
	}
	return deploys, nil
}

func (c *kubeClient) GetReplicas(ctx context.Context, namespace, name string) (int32, error) {
	deploy, err := c.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return 0, err
	}
	return replicasOf(deploy.Spec.Replicas), nil
}

func (c *kubeClient) ScaleDeployment(ctx context.Context, namespace, name string, replicas int32) error {
	patch := fmt.Sprintf(`{"spec":{"replicas":%d}}`, replicas)
	_, err := c.clientset.AppsV1().
		Deployments(namespace).
		Patch(ctx, name, types.StrategicMergePatchType, []byte(patch), metav1.PatchOptions{})
	return err
}

func replicasOf(replicas *int32) int32 {
	if replicas == nil {
		return 0
	}
	return *replicas
}
