package scale

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

const testNamespace = "demo"

func newDeployment(name string, replicas int32) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Namespace: testNamespace,
			Name:      name,
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
		},
	}
}

func replicasFor(t *testing.T, clientset kubernetes.Interface, name string) int32 {
	t.Helper()

	deploy, err := clientset.AppsV1().Deployments(testNamespace).Get(context.Background(), name, metav1.GetOptions{})
	require.NoError(t, err)
	require.NotNil(t, deploy.Spec.Replicas)
	return *deploy.Spec.Replicas
}

func patchActions(clientset *fake.Clientset) []k8stesting.Action {
	var patches []k8stesting.Action
	for _, action := range clientset.Actions() {
		if action.GetVerb() == "patch" {
			patches = append(patches, action)
		}
	}
	return patches
}
