package stagerun_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	intstagerun "github.com/slok/stagerun/test/integration/stagerun"
)

func TestIntegrationRun(t *testing.T) {
	config := intstagerun.NewConfig(t)

	tests := map[string]struct {
		pipeline    string
		args        []string
		expExitCode int
		expStdout   string
		expStderr   []string
	}{
		"A successful pipeline should render every stage and exit with 0.": {
			pipeline: `
name: ok
stages:
  - name: build
    steps:
      - name: one
        shell: "true"
      - name: two
        command: ["sh", "-c", "exit 0"]
  - name: deploy
    steps:
      - name: three
        shell: test "$DEPLOY_ENV" = prod
        env:
          DEPLOY_ENV: prod
`,
			expExitCode: 0,
			expStdout: "[1/2] build\n" +
				"  [1/2] one ✔\n" +
				"  [1/2] two ✔\n" +
				"[2/2] deploy\n" +
				"  [2/2] three ✔\n",
		},

		"A failed step should halt the pipeline and exit with 1.": {
			pipeline: `
name: ko
stages:
  - name: build
    steps:
      - name: broken
        shell: echo boom && exit 3
  - name: deploy
    steps:
      - name: never
        shell: "true"
`,
			expExitCode: 1,
			expStdout: "[1/2] build\n" +
				"  [1/2] broken ✘\n" +
				"stage 1 failed: broken\n",
			expStderr: []string{"exit code 3", "boom"},
		},

		"Env passed with the flag should reach the steps.": {
			pipeline: `
name: env
stages:
  - name: check
    steps:
      - name: env
        shell: test "$FROM_FLAG" = yes
`,
			args:        []string{"--env", "FROM_FLAG=yes"},
			expExitCode: 0,
			expStdout: "[1/1] check\n" +
				"  [1/1] env ✔\n",
		},

		"A step exceeding its timeout should fail the stage.": {
			pipeline: `
name: slow
stages:
  - name: wait
    steps:
      - name: sleep
        shell: sleep 10
        timeout: 200ms
`,
			expExitCode: 1,
			expStdout: "[1/1] wait\n" +
				"  [1/1] sleep ✘\n" +
				"stage 1 failed: sleep\n",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			path := intstagerun.WritePipeline(t, test.pipeline)
			stdout, stderr, exitCode, err := intstagerun.RunPipeline(ctx, config, path, test.args...)
			require.NoError(t, err)

			assert.Equal(t, test.expExitCode, exitCode)
			assert.Equal(t, test.expStdout, string(stdout))
			for _, s := range test.expStderr {
				assert.Contains(t, string(stderr), s)
			}
		})
	}
}

func TestIntegrationValidate(t *testing.T) {
	config := intstagerun.NewConfig(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	path := intstagerun.WritePipeline(t, `
name: plan
stages:
  - name: build
    steps:
      - name: compile
        shell: make
`)

	stdout, _, exitCode, err := intstagerun.RunValidate(ctx, config, path, "json")
	require.NoError(t, err)
	require.Equal(t, 0, exitCode)

	var plan struct {
		Name   string `json:"name"`
		Stages []struct {
			Name string `json:"name"`
		} `json:"stages"`
	}
	require.NoError(t, json.Unmarshal(stdout, &plan))
	assert.Equal(t, "plan", plan.Name)
	require.Len(t, plan.Stages, 1)
	assert.Equal(t, "build", plan.Stages[0].Name)

	bad := intstagerun.WritePipeline(t, "stages: []\n")
	_, stderr, exitCode, err := intstagerun.RunValidate(ctx, config, bad, "table")
	require.NoError(t, err)
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, string(stderr), "not valid")
}
