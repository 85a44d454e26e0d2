package notify_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"offermonitor/internal/notify"
)

func testConfig() notify.TwilioConfig {
	return notify.TwilioConfig{
		AccountSID: "AC123",
		AuthToken:  "secret",
		From:       "whatsapp:+14155238886",
		To:         "whatsapp:+5511999999999",
	}
}

func TestNewTwilioClient_RequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := notify.NewTwilioClient(notify.TwilioConfig{From: "a", To: "b"})
	require.Error(t, err)

	client, err := notify.NewTwilioClient(testConfig())
	require.NoError(t, err)
	require.NotNil(t, client)
}

func TestSend_PostsFormAndReturnsSID(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, http.MethodPost, req.Method)
			require.Contains(t, req.URL.Path, "/Accounts/AC123/Messages.json")

			user, pass, ok := req.BasicAuth()
			require.True(t, ok)
			require.Equal(t, "AC123", user)
			require.Equal(t, "secret", pass)

			require.NoError(t, req.ParseForm())
			require.Equal(t, "whatsapp:+5511999999999", req.PostForm.Get("To"))
			require.Contains(t, req.PostForm.Get("Body"), "menores preços")

			return &http.Response{
				StatusCode: http.StatusCreated,
				Body:       io.NopCloser(strings.NewReader(`{"sid":"SM42","status":"queued"}`)),
			}, nil
		}).
		Times(1)

	client, err := notify.NewTwilioClient(testConfig(), notify.WithHTTPClient(httpClient))
	require.NoError(t, err)

	sid, err := client.Send(context.Background(), "🔥 *Top 2 menores preços* 🔥")
	require.NoError(t, err)
	require.Equal(t, "SM42", sid)
}

func TestSend_SurfacesAPIError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(&http.Response{
			StatusCode: http.StatusUnauthorized,
			Body:       io.NopCloser(strings.NewReader(`{"code":20003,"message":"Authentication Error"}`)),
		}, nil).
		Times(1)

	client, err := notify.NewTwilioClient(testConfig(), notify.WithHTTPClient(httpClient))
	require.NoError(t, err)

	_, err = client.Send(context.Background(), "corpo")
	require.ErrorContains(t, err, "Authentication Error")
}

func TestSend_EmptySIDIsError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(&http.Response{
			StatusCode: http.StatusCreated,
			Body:       io.NopCloser(strings.NewReader(`{}`)),
		}, nil).
		Times(1)

	client, err := notify.NewTwilioClient(testConfig(), notify.WithHTTPClient(httpClient))
	require.NoError(t, err)

	_, err = client.Send(context.Background(), "corpo")
	require.Error(t, err)
}
