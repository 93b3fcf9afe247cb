package sns

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const publishResponse = `<PublishResponse xmlns="http://sns.amazonaws.com/doc/2010-03-31/">
  <PublishResult><MessageId>m-1</MessageId></PublishResult>
  <ResponseMetadata><RequestId>r-1</RequestId></ResponseMetadata>
</PublishResponse>`

func testConfig() aws.Config {
	return aws.Config{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("test", "test", ""),
	}
}

func TestPublish_SendsEventToTopic(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(body))
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(publishResponse))
	}))
	defer srv.Close()

	arn := "arn:aws:sns:us-east-1:000000000000:account-events"
	p := NewPublisher(testConfig(), aws.String(srv.URL), arn)

	require.NoError(t, p.Publish(context.Background(), "account.verified", "u1"))
	assert.Equal(t, "Publish", form.Get("Action"))
	assert.Equal(t, arn, form.Get("TopicArn"))
	assert.Contains(t, form.Get("Message"), `"user_id":"u1"`)
	assert.Contains(t, form.Get("Message"), `"type":"account.verified"`)
}

func TestPublish_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<ErrorResponse><Error><Type>Sender</Type><Code>NotFound</Code><Message>Topic does not exist</Message></Error><RequestId>r</RequestId></ErrorResponse>`))
	}))
	defer srv.Close()

	p := NewPublisher(testConfig(), aws.String(srv.URL), "arn:aws:sns:us-east-1:000000000000:missing")
	err := p.Publish(context.Background(), "password.reset", "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password.reset")
}
