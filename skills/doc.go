// 版权所有 2024 SkillFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 skills 提供技能注册表与内置技能目录。

Registry 管理技能的注册、发现、启停与调用，调用时维护
成功率与平均延迟统计，并可挂接 Prometheus 指标。技能以
JSON 输入输出的 Handler 形式注册，定义可导出/导入。

Catalog 把各领域客户端（arXiv 检索、MiniMax 语音与音乐、
Seedance 视频、资讯聚合、动态条形图）装配为内置技能：

  - arxiv.search      论文检索
  - speech.tts        语音合成
  - speech.tts_async  长文本异步语音合成
  - speech.transcribe 语音转写
  - music.generate    音乐生成
  - video.generate    视频生成
  - news.fetch        RSS 资讯聚合
  - news.hackernews   Hacker News 最新故事
  - chart.race        CSV 动态条形图
*/
package skills
