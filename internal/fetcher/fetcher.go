// Package fetcher implements the L3 Resource Fetcher: Get and List against
// the Kubernetes API via a dynamic client, with retry/backoff applied to
// transient failures.
package fetcher

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"

	"github.com/crossplane/function-kubecore-schema-registry/internal/domain"
	functionerrors "github.com/crossplane/function-kubecore-schema-registry/pkg/errors"
	"github.com/crossplane/function-kubecore-schema-registry/pkg/interfaces"
)

// kindPlurals maps a platform Kind to its CRD plural resource name. The
// dynamic client needs the GVR, not the GVK, to build a request.
var kindPlurals = map[string]string{
	"XApp":            "xapps",
	"XKubeSystem":     "xkubesystems",
	"XKubEnv":         "xkubenvs",
	"XKubeCluster":    "xkubeclusters",
	"XGitHubProject":  "xgithubprojects",
	"XGitHubApp":      "xgithubapps",
	"XQualityGate":    "xqualitygates",
	"XKubeNet":        "xkubenets",
	"XGitHubProvider": "xgithubproviders",
	"ConfigMap":       "configmaps",
	"Secret":          "secrets",
	"ServiceAccount":  "serviceaccounts",
	"ProviderConfig":  "providerconfigs",
}

// Fetcher implements interfaces.Fetcher against a dynamic.Interface.
type Fetcher struct {
	client      dynamic.Interface
	timeout     time.Duration
	maxAttempts uint
	log         interfaces.Logger
}

// New creates a Fetcher. apiCallTimeout bounds each individual API call;
// maxAttempts bounds the cenkalti/backoff retry loop for transient errors.
func New(client dynamic.Interface, apiCallTimeout time.Duration, maxAttempts uint, log interfaces.Logger) *Fetcher {
	return &Fetcher{client: client, timeout: apiCallTimeout, maxAttempts: maxAttempts, log: log}
}

var _ interfaces.Fetcher = (*Fetcher)(nil)

func gvrFor(apiVersion, kind string) (schema.GroupVersionResource, error) {
	gv, err := schema.ParseGroupVersion(apiVersion)
	if err != nil {
		return schema.GroupVersionResource{}, functionerrors.InvalidResourceRefError(err.Error())
	}
	plural, ok := kindPlurals[kind]
	if !ok {
		return schema.GroupVersionResource{}, functionerrors.InvalidResourceRefError("unknown kind: " + kind)
	}
	return gv.WithResource(plural), nil
}

// Get fetches a single resource by coordinates, retrying transient errors
// with exponential backoff and surfacing NotFound/Forbidden immediately.
func (f *Fetcher) Get(ctx context.Context, ref domain.ResourceRef) (*domain.ResolvedResource, error) {
	gvr, err := gvrFor(ref.APIVersion, ref.Kind)
	if err != nil {
		return nil, err
	}

	operation := func() (*unstructured.Unstructured, error) {
		callCtx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()

		var obj *unstructured.Unstructured
		var getErr error
		if ref.Namespace != "" {
			obj, getErr = f.client.Resource(gvr).Namespace(ref.Namespace).Get(callCtx, ref.Name, metav1.GetOptions{})
		} else {
			obj, getErr = f.client.Resource(gvr).Get(callCtx, ref.Name, metav1.GetOptions{})
		}
		if getErr == nil {
			return obj, nil
		}
		return nil, classifyForRetry(getErr, ref)
	}

	obj, err := backoff.Retry(ctx, operation,
		backoff.WithMaxTries(f.maxAttempts),
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
	)
	if err != nil {
		return nil, err
	}

	return &domain.ResolvedResource{
		Ref:        ref,
		Body:       obj,
		Edges:      ExtractEdges(ref.Kind, obj),
		ResolvedAt: time.Now(),
	}, nil
}

// List returns resources of (apiVersion, kind) matching labelSelector,
// scoped to namespace when non-empty. It returns nil, not an error, when
// nothing matches.
func (f *Fetcher) List(ctx context.Context, apiVersion, kind, namespace, labelSelector string) ([]*domain.ResolvedResource, error) {
	gvr, err := gvrFor(apiVersion, kind)
	if err != nil {
		return nil, err
	}

	operation := func() (*unstructured.UnstructuredList, error) {
		callCtx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()

		opts := metav1.ListOptions{LabelSelector: labelSelector}
		var list *unstructured.UnstructuredList
		var listErr error
		if namespace != "" {
			list, listErr = f.client.Resource(gvr).Namespace(namespace).List(callCtx, opts)
		} else {
			list, listErr = f.client.Resource(gvr).List(callCtx, opts)
		}
		if listErr == nil {
			return list, nil
		}
		return nil, classifyForRetry(listErr, domain.ResourceRef{APIVersion: apiVersion, Kind: kind, Namespace: namespace})
	}

	list, err := backoff.Retry(ctx, operation,
		backoff.WithMaxTries(f.maxAttempts),
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
	)
	if err != nil {
		if functionerrors.IsErrorCode(err, functionerrors.ErrorCodeNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if len(list.Items) == 0 {
		return nil, nil
	}
	resources := make([]*domain.ResolvedResource, 0, len(list.Items))
	now := time.Now()
	for i := range list.Items {
		item := list.Items[i]
		resources = append(resources, &domain.ResolvedResource{
			Ref: domain.ResourceRef{
				APIVersion: apiVersion,
				Kind:       kind,
				Name:       item.GetName(),
				Namespace:  item.GetNamespace(),
			},
			Body:       &item,
			Edges:      ExtractEdges(kind, &item),
			ResolvedAt: now,
		})
	}
	return resources, nil
}

// classify maps a client-go error into the function's typed error
// taxonomy so callers can branch on functionerrors.IsErrorCode instead of
// apierrors directly.
func classify(err error, ref domain.ResourceRef) error {
	errRef := functionerrors.ResourceRef{
		APIVersion: ref.APIVersion,
		Kind:       ref.Kind,
		Name:       ref.Name,
		Namespace:  ref.Namespace,
	}
	switch {
	case apierrors.IsNotFound(err):
		return functionerrors.NotFoundError(errRef)
	case apierrors.IsForbidden(err):
		return functionerrors.ForbiddenError(errRef)
	case apierrors.IsUnauthorized(err):
		return functionerrors.UnauthorizedError(err.Error())
	case apierrors.IsTimeout(err), apierrors.IsServerTimeout(err):
		return functionerrors.TimeoutError(errRef, 0)
	case apierrors.IsTooManyRequests(err), apierrors.IsServiceUnavailable(err), apierrors.IsInternalError(err):
		return functionerrors.TransientError(err.Error())
	default:
		return functionerrors.KubernetesClientError(err.Error())
	}
}

// classifyForRetry classifies err and wraps non-retryable codes as
// backoff.Permanent so the retry loop gives up immediately instead of
// spending its budget retrying a NotFound or Forbidden.
func classifyForRetry(err error, ref domain.ResourceRef) error {
	classified := classify(err, ref)
	if functionerrors.IsRetryable(classified) {
		return classified
	}
	return backoff.Permanent(classified)
}
